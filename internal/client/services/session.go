// Package services contains the application services of the session client.
// SessionService is the only writer of the token store and of the published
// session state.
package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/client/repositories/tokens"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/dmitrijs2005/gophsession/internal/obs"
	"github.com/dmitrijs2005/gophsession/internal/observer"
	"github.com/google/uuid"
)

var (
	// ErrAlreadyBootstrapped is returned by a second Bootstrap call.
	ErrAlreadyBootstrapped = errors.New("session already bootstrapped")

	// ErrNotAuthenticated is returned by RenewTokens when no session exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSuperseded is returned by RenewTokens when a login or logout
	// committed while the renewal was in flight; its result is dropped.
	ErrSuperseded = errors.New("result superseded by a newer login or logout")
)

// SessionService is the SessionController.
//
// Contract:
//   - Bootstrap resolves the initial state from stored tokens, once.
//   - Login persists the issued pair, then publishes Authenticated.
//   - Register never changes the session.
//   - Logout always ends the session locally.
//   - RefreshUser and RenewTokens republish on success and end the session on
//     any failure.
//
// Each persist+publish step runs under one lock, and the token store is always
// written before the matching state is published. The state is queued under
// the lock and delivered to subscribers once it is released. Bootstrap, RefreshUser and
// RenewTokens drop their result if a login or logout committed while they
// were waiting on the backend.
type SessionService struct {
	backend client.Client
	store   tokens.Repository
	state   *observer.Value[models.SessionState]
	log     logging.Logger
	metrics *obs.Metrics

	mu           sync.Mutex
	generation   uint64
	tokens       *models.TokenPair // last committed pair; survives a failed Save
	bootstrapped atomic.Bool
}

// Option configures a SessionService.
type Option func(*SessionService)

// WithLogger sets the logger; the default discards.
func WithLogger(l logging.Logger) Option {
	return func(s *SessionService) { s.log = l }
}

// WithMetrics records published transitions and dropped results.
func WithMetrics(m *obs.Metrics) Option {
	return func(s *SessionService) { s.metrics = m }
}

// NewSessionService returns a controller whose state is Unknown until Bootstrap.
func NewSessionService(backend client.Client, store tokens.Repository, opts ...Option) *SessionService {
	s := &SessionService{
		backend: backend,
		store:   store,
		state:   observer.New(models.Unknown()),
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the last published session state.
func (s *SessionService) State() models.SessionState {
	return s.state.Get()
}

// Subscribe registers fn for every future state. Callbacks run after the
// controller has released its lock and may call SessionService methods; a
// state published from inside a callback is delivered after the current round.
func (s *SessionService) Subscribe(fn func(models.SessionState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// Bootstrap reconciles stored tokens with the backend. On return the state is
// never Unknown. Backend and storage failures are logged, not returned.
func (s *SessionService) Bootstrap(ctx context.Context) error {
	if !s.bootstrapped.CompareAndSwap(false, true) {
		return ErrAlreadyBootstrapped
	}
	log, gen := s.begin("bootstrap")

	pair, err := s.store.Load(ctx)
	if err != nil {
		log.Warn(ctx, "token store unreadable, starting anonymous", "error", err)
		pair = nil
	}
	if pair == nil {
		s.commitAnonymous(ctx, log, "bootstrap", gen, false)
		return nil
	}

	user, err := s.backend.CurrentUser(ctx, pair.AccessToken)
	if err != nil {
		log.Warn(ctx, "stored session rejected", "outcome", client.Outcome(err), "error", err)
		s.commitAnonymous(ctx, log, "bootstrap", gen, true)
		return nil
	}

	defer s.state.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ctx, log, "bootstrap", gen) {
		return nil
	}
	s.tokens = pair
	s.publish(ctx, log, "bootstrap", models.Authenticated(*user))
	return nil
}

// Login authenticates creds. On failure the session and the token store are
// left untouched and the error is returned as is.
func (s *SessionService) Login(ctx context.Context, creds models.Credentials) error {
	log, _ := s.begin("login")

	if err := creds.Validate(); err != nil {
		return client.ValidationFailure(err)
	}

	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		log.Info(ctx, "login rejected", "outcome", client.Outcome(err))
		return err
	}

	defer s.state.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(ctx, log, res.Tokens)
	s.generation++
	s.publish(ctx, log, "login", models.Authenticated(res.User))
	return nil
}

// Register creates an account. The new account has to verify its email
// before it can log in, so the session is not touched.
func (s *SessionService) Register(ctx context.Context, req models.RegistrationRequest) error {
	log, _ := s.begin("register")

	if err := req.Validate(); err != nil {
		return client.ValidationFailure(err)
	}

	id, err := s.backend.Register(ctx, req)
	if err != nil {
		log.Info(ctx, "registration rejected", "outcome", client.Outcome(err))
		return err
	}
	log.Info(ctx, "account registered", "user_id", id)
	return nil
}

// Logout tells the backend when it can and then ends the session locally,
// whatever the backend said.
func (s *SessionService) Logout(ctx context.Context) {
	log, _ := s.begin("logout")

	if pair := s.currentTokens(ctx, log); pair != nil {
		if err := s.backend.Logout(ctx, pair.AccessToken); err != nil {
			log.Warn(ctx, "backend logout failed, ending session locally", "outcome", client.Outcome(err))
		}
	}

	defer s.state.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear(ctx, log)
	s.generation++
	s.publish(ctx, log, "logout", models.Anonymous())
}

// RefreshUser refetches the user for the stored access token. Any failure
// ends the session.
func (s *SessionService) RefreshUser(ctx context.Context) {
	log, gen := s.begin("refresh_user")

	pair := s.currentTokens(ctx, log)
	if pair == nil {
		s.commitAnonymous(ctx, log, "refresh_user", gen, true)
		return
	}

	user, err := s.backend.CurrentUser(ctx, pair.AccessToken)
	if err != nil {
		log.Warn(ctx, "session no longer valid", "outcome", client.Outcome(err))
		s.commitAnonymous(ctx, log, "refresh_user", gen, true)
		return
	}

	defer s.state.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ctx, log, "refresh_user", gen) {
		return
	}
	s.publish(ctx, log, "refresh_user", models.Authenticated(*user))
}

// RenewTokens trades the stored refresh token for a new pair. Failure ends
// the session like RefreshUser and is returned to the caller.
func (s *SessionService) RenewTokens(ctx context.Context) error {
	log, gen := s.begin("renew_tokens")

	pair := s.currentTokens(ctx, log)
	if pair == nil {
		s.commitAnonymous(ctx, log, "renew_tokens", gen, true)
		return ErrNotAuthenticated
	}

	res, err := s.backend.RefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		log.Warn(ctx, "token renewal failed", "outcome", client.Outcome(err))
		if !s.commitAnonymous(ctx, log, "renew_tokens", gen, true) {
			return ErrSuperseded
		}
		return err
	}

	defer s.state.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ctx, log, "renew_tokens", gen) {
		return ErrSuperseded
	}
	s.save(ctx, log, res.Tokens)
	s.generation++
	s.publish(ctx, log, "renew_tokens", models.Authenticated(res.User))
	return nil
}

// Close releases the backend transport.
func (s *SessionService) Close(ctx context.Context) error {
	return s.backend.Close()
}

func (s *SessionService) begin(op string) (logging.Logger, uint64) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	return s.log.With("op", op, "op_id", uuid.NewString()), gen
}

// commitAnonymous ends the session unless the operation went stale. It
// reports whether anything was committed.
func (s *SessionService) commitAnonymous(ctx context.Context, log logging.Logger, op string, gen uint64, wipe bool) bool {
	defer s.state.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ctx, log, op, gen) {
		return false
	}
	if wipe {
		s.clear(ctx, log)
	}
	s.publish(ctx, log, op, models.Anonymous())
	return true
}

// The helpers below expect s.mu to be held.

func (s *SessionService) stale(ctx context.Context, log logging.Logger, op string, gen uint64) bool {
	if s.generation == gen {
		return false
	}
	log.Debug(ctx, "dropping stale result", "started_at", gen, "current", s.generation)
	s.metrics.ObserveDiscard(op)
	return true
}

func (s *SessionService) save(ctx context.Context, log logging.Logger, pair models.TokenPair) {
	if err := s.store.Save(ctx, pair); err != nil {
		log.Warn(ctx, "token store unavailable, session kept in memory", "error", err)
	}
	s.tokens = &pair
}

func (s *SessionService) clear(ctx context.Context, log logging.Logger) {
	if err := s.store.Clear(ctx); err != nil {
		log.Warn(ctx, "token store clear failed", "error", err)
	}
	s.tokens = nil
}

// publish enqueues st; callers flush after releasing s.mu so subscribers may
// call back into the service.
func (s *SessionService) publish(ctx context.Context, log logging.Logger, op string, st models.SessionState) {
	s.state.Enqueue(st)
	s.metrics.ObserveTransition(op, st.Kind().String())
	log.Info(ctx, "session state published", "state", st.Kind().String())
}

func (s *SessionService) currentTokens(ctx context.Context, log logging.Logger) *models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens != nil {
		p := *s.tokens
		return &p
	}
	pair, err := s.store.Load(ctx)
	if err != nil {
		log.Warn(ctx, "token store unreadable", "error", err)
		return nil
	}
	return pair
}
