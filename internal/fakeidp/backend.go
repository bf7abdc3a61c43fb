// Package fakeidp is an in-process identity backend speaking the relay's
// JSON routes and the AuthService gRPC service. It issues HS256 access and
// refresh tokens, hashes passwords with bcrypt and hands out email
// verification tokens through Outbox instead of sending mail.
package fakeidp

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Error is a failed call: an HTTP status and the detail shown to the user.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("%d: %s", e.Status, e.Detail) }

func fail(status int, detail string) *Error { return &Error{Status: status, Detail: detail} }

// User is the /me payload.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// TokenResponse is the login and refresh payload. Its user carries no
// created_at.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         User   `json:"user"`
}

// RegisterRequest is the /register body.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	UniversityID string `json:"university_id"`
}

// LoginRequest is the /login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type account struct {
	User
	passwordHash []byte
	created      time.Time
}

// Backend holds users in memory. Safe for concurrent use.
type Backend struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
	hashCost   int
	now        func() time.Time

	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	pending  map[string]string    // verification token -> user id
	issuedAt map[string]time.Time // verification token -> issue time
	outbox   map[string]string    // email -> last verification token
	notify   func(email, token string)

	loginRate  rate.Limit
	loginBurst int
	limiters   map[string]*rate.Limiter // email -> login attempts
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(b *Backend) { b.now = now } }

// WithTTL sets the access and refresh token lifetimes.
func WithTTL(access, refresh time.Duration) Option {
	return func(b *Backend) { b.accessTTL, b.refreshTTL = access, refresh }
}

// WithHashCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option { return func(b *Backend) { b.hashCost = cost } }

// WithLoginLimit throttles login attempts per email to r with the given
// burst. Without it logins are unlimited.
func WithLoginLimit(r rate.Limit, burst int) Option {
	return func(b *Backend) { b.loginRate, b.loginBurst = r, burst }
}

// New returns an empty backend signing tokens with secret.
func New(secret string, opts ...Option) *Backend {
	b := &Backend{
		secret:     []byte(secret),
		accessTTL:  60 * time.Minute,
		refreshTTL: 30 * 24 * time.Hour,
		verifyTTL:  24 * time.Hour,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
		byEmail:    map[string]*account{},
		byID:       map[string]*account{},
		pending:    map[string]string{},
		issuedAt:   map[string]time.Time{},
		outbox:     map[string]string{},
		limiters:   map[string]*rate.Limiter{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Register creates an unverified account and queues a verification token.
func (b *Backend) Register(req RegisterRequest) (*User, error) {
	if req.Email == "" || len(req.Password) < 8 || len(req.Password) > 128 {
		return nil, fail(http.StatusUnprocessableEntity, "")
	}
	if req.Role != "student" && req.Role != "alumni" {
		return nil, fail(http.StatusUnprocessableEntity, "")
	}
	email := strings.ToLower(req.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), b.hashCost)
	if err != nil {
		return nil, fail(http.StatusInternalServerError, "Internal server error")
	}
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fail(http.StatusInternalServerError, "Internal server error")
	}

	b.mu.Lock()
	if _, ok := b.byEmail[email]; ok {
		b.mu.Unlock()
		return nil, fail(http.StatusBadRequest, "Email already registered")
	}
	now := b.now().UTC()
	acc := &account{
		User:         User{ID: uuid.NewString(), Email: email, Role: req.Role},
		passwordHash: hash,
		created:      now,
	}
	b.byEmail[email] = acc
	b.byID[acc.ID] = acc
	b.pending[token] = acc.ID
	b.issuedAt[token] = now
	b.outbox[email] = token
	u := acc.view()
	notify := b.notify
	b.mu.Unlock()

	if notify != nil {
		notify(email, token)
	}
	return &u, nil
}

// OnVerificationToken registers fn to receive every verification token
// issued by Register, in place of an email.
func (b *Backend) OnVerificationToken(fn func(email, token string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notify = fn
}

// Outbox returns the last verification token sent to email.
func (b *Backend) Outbox(email string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.outbox[strings.ToLower(email)]
	return t, ok
}

// Login checks the password and issues a token pair. Unverified accounts may
// log in.
func (b *Backend) Login(req LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(req.Email)

	b.mu.Lock()
	if !b.allowLogin(email) {
		b.mu.Unlock()
		return nil, fail(http.StatusTooManyRequests, "Too many login attempts")
	}
	acc, ok := b.byEmail[email]
	b.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		return nil, fail(http.StatusUnauthorized, "Incorrect email or password")
	}
	return b.issue(acc)
}

// Refresh trades a refresh token for a new pair.
func (b *Backend) Refresh(refreshToken string) (*TokenResponse, error) {
	claims, err := parseToken(refreshToken, tokenRefresh, b.secret, b.now())
	if err != nil {
		return nil, fail(http.StatusUnauthorized, "Invalid refresh token")
	}
	acc, ok := b.account(claims.Subject)
	if !ok {
		return nil, fail(http.StatusUnauthorized, "Invalid refresh token")
	}
	return b.issue(acc)
}

// Me resolves an access token to its user.
func (b *Backend) Me(accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, fail(http.StatusUnauthorized, "Not authenticated")
	}
	claims, err := parseToken(accessToken, tokenAccess, b.secret, b.now())
	if err != nil {
		return nil, fail(http.StatusUnauthorized, "Invalid authentication credentials")
	}
	acc, ok := b.account(claims.Subject)
	if !ok {
		return nil, fail(http.StatusUnauthorized, "User not found")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := acc.view()
	return &u, nil
}

// VerifyEmail marks the token's account verified. Tokens are single use.
func (b *Backend) VerifyEmail(token string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.pending[token]
	if !ok || b.now().Sub(b.issuedAt[token]) > b.verifyTTL {
		return "", fail(http.StatusBadRequest, "Invalid or expired verification token")
	}
	delete(b.pending, token)
	delete(b.issuedAt, token)

	acc, ok := b.byID[id]
	if !ok {
		return "", fail(http.StatusNotFound, "User not found")
	}
	acc.EmailVerified = true
	return "Email verified successfully", nil
}

// Logout accepts any token; sessions are stateless JWTs.
func (b *Backend) Logout(string) (string, error) {
	return "Logged out successfully", nil
}

// allowLogin consumes one attempt for email. Callers hold b.mu.
func (b *Backend) allowLogin(email string) bool {
	if b.loginRate == 0 {
		return true
	}
	lim, ok := b.limiters[email]
	if !ok {
		lim = rate.NewLimiter(b.loginRate, b.loginBurst)
		b.limiters[email] = lim
	}
	return lim.AllowN(b.now(), 1)
}

func (b *Backend) account(id string) (*account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.byID[id]
	return acc, ok
}

func (b *Backend) issue(acc *account) (*TokenResponse, error) {
	b.mu.Lock()
	u := acc.User
	b.mu.Unlock()

	now := b.now()
	base := Claims{Email: u.Email, Role: u.Role}
	base.Subject = u.ID
	base.ID = uuid.NewString()

	access := base
	access.Type = tokenAccess
	at, err := generateToken(access, b.secret, now, b.accessTTL)
	if err != nil {
		return nil, fail(http.StatusInternalServerError, "Internal server error")
	}

	refresh := base
	refresh.ID = uuid.NewString()
	refresh.Type = tokenRefresh
	rt, err := generateToken(refresh, b.secret, now, b.refreshTTL)
	if err != nil {
		return nil, fail(http.StatusInternalServerError, "Internal server error")
	}

	return &TokenResponse{
		AccessToken:  at,
		RefreshToken: rt,
		TokenType:    common.DefaultTokenType,
		ExpiresIn:    int64(b.accessTTL / time.Second),
		User:         User{ID: u.ID, Email: u.Email, Role: u.Role, EmailVerified: u.EmailVerified},
	}, nil
}

// view must be called with b.mu held.
func (a *account) view() User {
	u := a.User
	u.CreatedAt = a.created.Format("2006-01-02T15:04:05.999999")
	return u
}
