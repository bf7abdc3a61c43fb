package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/client/services"
	"github.com/dmitrijs2005/gophsession/internal/client/verification"
	"github.com/dmitrijs2005/gophsession/internal/common"
)

// getSimpleText, getPassword and getChoice are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getChoice     = GetChoice
)

var roles = []string{string(models.RoleStudent), string(models.RoleAlumni)}

// Register prompts for the sign-up fields and creates the account. The
// session is left as it was: the new account has to verify its email first.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	role, err := getChoice(a.reader, "Role", roles, a.out)
	if err != nil {
		return err
	}

	university, err := getSimpleText(a.reader, "Enter university id", a.out)
	if err != nil {
		return err
	}

	err = a.session.Register(ctx, models.RegistrationRequest{
		Email:        email,
		Password:     string(password),
		Role:         models.Role(role),
		UniversityID: university,
	})
	if err != nil {
		printlnFn(client.Message(err, "Registration failed"))
		return err
	}

	printlnFn("Registration successful! Check your email to verify your account.")
	return nil
}

// Login prompts for credentials and starts a session. The new state is
// printed by the session subscriber.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, models.Credentials{Email: email, Password: string(password)}); err != nil {
		printlnFn(client.Message(err, "Login failed"))
		return err
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

// WhoAmI refetches the current user. A rejected access token ends the session.
func (a *App) WhoAmI(ctx context.Context) error {
	a.session.RefreshUser(ctx)
	if !a.isLoggedIn() {
		printlnFn("Not authenticated")
		return services.ErrNotAuthenticated
	}
	return nil
}

// Renew trades the stored refresh token for a new pair.
func (a *App) Renew(ctx context.Context) error {
	err := a.session.RenewTokens(ctx)
	switch {
	case err == nil:
		printlnFn("Tokens renewed")
	case errors.Is(err, services.ErrNotAuthenticated):
		printlnFn("Not authenticated")
	case errors.Is(err, services.ErrSuperseded):
		printlnFn("Renewal discarded: the session changed meanwhile")
	default:
		printlnFn(client.Message(err, "Invalid refresh token"))
	}
	return err
}

// Verify runs a fresh verification flow for link, which may be a full
// verification URL or a bare token.
func (a *App) Verify(ctx context.Context, link string) error {
	flow := verification.NewFlow(a.backend, a.log)
	st, err := flow.RunURL(ctx, link)
	if err != nil {
		return err
	}

	printlnFn(st.Message())
	if st.Kind() != models.VerificationSucceeded {
		return errors.New(st.Message())
	}
	return nil
}

func (a *App) Status(context.Context) error {
	printlnFn("Session:", describeState(a.session.State()))
	return nil
}
