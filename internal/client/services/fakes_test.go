package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/client/repositories/tokens"
)

// fakeClient implements client.Client. A non-nil *Fn wins over the preset
// result of the same call.
type fakeClient struct {
	mu sync.Mutex

	RegisterRet string
	RegisterErr error

	LoginRet *models.LoginResult
	LoginErr error
	LoginFn  func(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)

	CurrentUserRet *models.SessionUser
	CurrentUserErr error
	CurrentUserFn  func(ctx context.Context, token string) (*models.SessionUser, error)

	LogoutErr error

	RefreshRet *models.LoginResult
	RefreshErr error

	CloseErr error

	LastRegisterReq      models.RegistrationRequest
	LastLoginCreds       models.Credentials
	LastCurrentUserToken string
	LastLogoutToken      string
	LastRefreshToken     string

	calls map[string]int
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeClient) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) Register(_ context.Context, req models.RegistrationRequest) (string, error) {
	f.record("register")
	f.mu.Lock()
	f.LastRegisterReq = req
	f.mu.Unlock()
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	f.record("login")
	f.mu.Lock()
	f.LastLoginCreds = creds
	fn := f.LoginFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, creds)
	}
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) CurrentUser(ctx context.Context, token string) (*models.SessionUser, error) {
	f.record("current_user")
	f.mu.Lock()
	f.LastCurrentUserToken = token
	fn := f.CurrentUserFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, token)
	}
	return f.CurrentUserRet, f.CurrentUserErr
}

func (f *fakeClient) VerifyEmail(context.Context, string) (string, error) {
	f.record("verify_email")
	return "", nil
}

func (f *fakeClient) Logout(_ context.Context, token string) error {
	f.record("logout")
	f.mu.Lock()
	f.LastLogoutToken = token
	f.mu.Unlock()
	return f.LogoutErr
}

func (f *fakeClient) RefreshToken(_ context.Context, token string) (*models.LoginResult, error) {
	f.record("refresh_token")
	f.mu.Lock()
	f.LastRefreshToken = token
	f.mu.Unlock()
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeClient) Close() error { return f.CloseErr }

// faultyStore is a memory store with injectable failures.
type faultyStore struct {
	*tokens.MemoryRepository
	SaveErr  error
	LoadErr  error
	ClearErr error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryRepository: tokens.NewMemoryRepository()}
}

func (s *faultyStore) Save(ctx context.Context, p models.TokenPair) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	return s.MemoryRepository.Save(ctx, p)
}

func (s *faultyStore) Load(ctx context.Context) (*models.TokenPair, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.MemoryRepository.Load(ctx)
}

func (s *faultyStore) Clear(ctx context.Context) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	return s.MemoryRepository.Clear(ctx)
}
