package client

import (
	"context"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
)

// Client is the AuthBackend contract: the identity service seen through the
// relay. Implementations return *Failure values (wrapped or not) for every
// unsuccessful call.
type Client interface {
	Register(ctx context.Context, req models.RegistrationRequest) (string, error)
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	CurrentUser(ctx context.Context, accessToken string) (*models.SessionUser, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*models.LoginResult, error)
	Close() error
}
