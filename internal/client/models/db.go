// Package models defines the client-side data model of the session manager:
// credentials, token pairs, the backend's view of the user and the tagged
// session and verification states.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Role is the account kind chosen at registration.
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
)

// Credentials are the transient login input. Never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the shape of the credentials before any network call.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

// RegistrationRequest is the transient sign-up input.
type RegistrationRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         Role   `json:"role"`
	UniversityID string `json:"university_id"`
}

// Validate mirrors the backend schema: email format, password of 8 to 128
// characters, a known role and a non-empty university id.
func (r RegistrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.Role, validation.Required, validation.In(RoleStudent, RoleAlumni)),
		validation.Field(&r.UniversityID, validation.Required),
	)
}

// Credentials returns the login part of the request.
func (r RegistrationRequest) Credentials() Credentials {
	return Credentials{Email: r.Email, Password: r.Password}
}

// TokenPair is the credential set issued on login. ExpiresIn is advisory;
// nothing schedules a refresh from it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// Complete reports whether both tokens are present. A partial pair is never
// a session.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// SessionUser is the backend's view of who is logged in. It is replaced
// wholesale on every successful fetch.
type SessionUser struct {
	ID            string
	Email         string
	Role          Role
	EmailVerified bool
	CreatedAt     time.Time
}

// LoginResult is what a successful login (or token renewal) yields.
type LoginResult struct {
	Tokens TokenPair
	User   SessionUser
}
