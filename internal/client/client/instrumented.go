package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/obs"
)

// Instrumented wraps a Client and records one metric sample per call.
type Instrumented struct {
	next    Client
	metrics *obs.Metrics
	now     func() time.Time
}

var _ Client = (*Instrumented)(nil)

// NewInstrumented returns next unchanged when m is nil.
func NewInstrumented(next Client, m *obs.Metrics) Client {
	if m == nil {
		return next
	}
	return &Instrumented{next: next, metrics: m, now: time.Now}
}

func (c *Instrumented) observe(op string, start time.Time, err error) {
	c.metrics.ObserveCall(op, Outcome(err), c.now().Sub(start))
}

func (c *Instrumented) Register(ctx context.Context, req models.RegistrationRequest) (string, error) {
	start := c.now()
	id, err := c.next.Register(ctx, req)
	c.observe("register", start, err)
	return id, err
}

func (c *Instrumented) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	start := c.now()
	res, err := c.next.Login(ctx, creds)
	c.observe("login", start, err)
	return res, err
}

func (c *Instrumented) CurrentUser(ctx context.Context, accessToken string) (*models.SessionUser, error) {
	start := c.now()
	u, err := c.next.CurrentUser(ctx, accessToken)
	c.observe("current_user", start, err)
	return u, err
}

func (c *Instrumented) VerifyEmail(ctx context.Context, token string) (string, error) {
	start := c.now()
	msg, err := c.next.VerifyEmail(ctx, token)
	c.observe("verify_email", start, err)
	return msg, err
}

func (c *Instrumented) Logout(ctx context.Context, accessToken string) error {
	start := c.now()
	err := c.next.Logout(ctx, accessToken)
	c.observe("logout", start, err)
	return err
}

func (c *Instrumented) RefreshToken(ctx context.Context, refreshToken string) (*models.LoginResult, error) {
	start := c.now()
	res, err := c.next.RefreshToken(ctx, refreshToken)
	c.observe("refresh_token", start, err)
	return res, err
}

func (c *Instrumented) Close() error { return c.next.Close() }
