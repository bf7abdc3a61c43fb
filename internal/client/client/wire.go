package client

import (
	"fmt"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/common"
)

// Wire shapes shared by the HTTP and gRPC transports. They follow the
// identity backend's JSON field names.

type userDTO struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type loginDTO struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         *userDTO `json:"user"`
}

type registeredDTO struct {
	ID string `json:"id"`
}

type messageDTO struct {
	Message string `json:"message"`
}

type detailDTO struct {
	Detail string `json:"detail"`
}

type refreshDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (u *userDTO) toModel() (*models.SessionUser, error) {
	if u == nil || u.ID == "" {
		return nil, fmt.Errorf("malformed user payload")
	}
	created, err := models.ParseTimestamp(u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &models.SessionUser{
		ID:            u.ID,
		Email:         u.Email,
		Role:          models.Role(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     created,
	}, nil
}

func (l *loginDTO) toModel() (*models.LoginResult, error) {
	pair := models.TokenPair{
		AccessToken:  l.AccessToken,
		RefreshToken: l.RefreshToken,
		TokenType:    l.TokenType,
		ExpiresIn:    l.ExpiresIn,
	}
	if !pair.Complete() {
		return nil, fmt.Errorf("malformed token payload")
	}
	if pair.TokenType == "" {
		pair.TokenType = common.DefaultTokenType
	}
	user, err := l.User.toModel()
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{Tokens: pair, User: *user}, nil
}
