// Package verification implements the email verification screen's state
// machine: Pending, then Succeeded or Failed, once.
package verification

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/dmitrijs2005/gophsession/internal/observer"
)

// User-facing messages.
const (
	MessageNoToken = "No verification token provided"
	MessageSuccess = "Email verified successfully! You can now log in."
	MessageFailure = "Verification failed. The token may be invalid or expired."
)

// ErrAlreadyResolved is returned when Run is called on a flow that already ran.
var ErrAlreadyResolved = errors.New("verification already started")

// Verifier is the part of client.Client the flow needs.
type Verifier interface {
	VerifyEmail(ctx context.Context, token string) (string, error)
}

// Flow is one visit of the verification screen. Create a new Flow to start
// over. It never touches tokens or the session.
type Flow struct {
	backend Verifier
	state   *observer.Value[models.VerificationState]
	log     logging.Logger
	started atomic.Bool
}

func NewFlow(backend Verifier, log logging.Logger) *Flow {
	if log == nil {
		log = logging.Discard()
	}
	return &Flow{
		backend: backend,
		state:   observer.New(models.Pending()),
		log:     log.With("op", "verify_email"),
	}
}

func (f *Flow) State() models.VerificationState { return f.state.Get() }

func (f *Flow) Subscribe(fn func(models.VerificationState)) (unsubscribe func()) {
	return f.state.Subscribe(fn)
}

// Run verifies token with the backend, exactly once. An empty token fails
// without a backend call. The outcome is the returned state; backend errors
// are folded into Failed.
func (f *Flow) Run(ctx context.Context, token string) (models.VerificationState, error) {
	if !f.started.CompareAndSwap(false, true) {
		return f.state.Get(), ErrAlreadyResolved
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return f.resolve(ctx, models.Failed(MessageNoToken)), nil
	}

	msg, err := f.backend.VerifyEmail(ctx, token)
	if err != nil {
		f.log.Info(ctx, "verification rejected", "outcome", client.Outcome(err))
		return f.resolve(ctx, models.Failed(client.Message(err, MessageFailure))), nil
	}
	if msg == "" {
		msg = MessageSuccess
	}
	return f.resolve(ctx, models.Succeeded(msg)), nil
}

// RunURL runs the flow with the token query parameter of a verification link.
// A bare token is accepted too.
func (f *Flow) RunURL(ctx context.Context, link string) (models.VerificationState, error) {
	return f.Run(ctx, TokenFromLink(link))
}

// TokenFromLink extracts the token from a link such as
// "http://host/verify-email?token=abc". Input with neither a query nor a path
// separator is taken as the token itself.
func TokenFromLink(link string) string {
	link = strings.TrimSpace(link)
	if !strings.ContainsAny(link, "?/") {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}

func (f *Flow) resolve(ctx context.Context, st models.VerificationState) models.VerificationState {
	f.state.Publish(st)
	f.log.Info(ctx, "verification resolved", "state", st.Kind().String())
	return st
}
