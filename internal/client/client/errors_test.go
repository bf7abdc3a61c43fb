package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFailure_Kinds(t *testing.T) {
	tests := []struct {
		status   int
		kind     error
		class    Class
		isUnauth bool
	}{
		{http.StatusBadRequest, ErrBackend, ClassClient, false},
		{http.StatusUnauthorized, ErrUnauthorized, ClassClient, true},
		{http.StatusForbidden, ErrUnauthorized, ClassClient, true},
		{http.StatusInternalServerError, ErrBackend, ClassServer, false},
		{http.StatusBadGateway, ErrBackend, ClassServer, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			f := NewFailure(tt.status, "x")
			require.ErrorIs(t, f, tt.kind)
			require.ErrorIs(t, f, ErrBackend)
			assert.Equal(t, tt.isUnauth, errors.Is(f, ErrUnauthorized))
			assert.False(t, errors.Is(f, ErrUnavailable))
			assert.Equal(t, tt.class, f.Class())
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	f := NetworkFailure(cause)

	require.ErrorIs(t, f, ErrUnavailable)
	require.ErrorIs(t, f, cause)
	assert.False(t, errors.Is(f, ErrBackend))
	assert.Equal(t, ClassNetwork, f.Class())
	assert.Equal(t, "dial tcp: connection refused", f.Error())
}

func TestValidationFailure(t *testing.T) {
	f := ValidationFailure(errors.New("email: must be a valid email address."))
	require.ErrorIs(t, f, ErrValidation)
	assert.Equal(t, "email: must be a valid email address.", f.Error())
}

func TestFailure_ErrorFallsBackToKind(t *testing.T) {
	assert.Equal(t, "backend failure", NewFailure(500, "").Error())
}

func TestFailure_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("login error: %w", NewFailure(401, "Incorrect email or password"))
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Incorrect email or password", Message(err, "Login failed"))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Invalid or expired verification token",
		Message(NewFailure(400, "Invalid or expired verification token"), "Verification failed"))
	assert.Equal(t, "Verification failed", Message(NewFailure(400, ""), "Verification failed"))
	assert.Equal(t, "Verification failed", Message(NetworkFailure(errors.New("eof")), "Verification failed"))
	assert.Equal(t, "Verification failed", Message(errors.New("plain"), "Verification failed"))
	assert.Equal(t, "Verification failed", Message(nil, "Verification failed"))
}

func TestMalformedResponse(t *testing.T) {
	f := MalformedResponse(200, errors.New("unexpected EOF"))
	require.ErrorIs(t, f, ErrBackend)
	assert.Equal(t, 200, f.Status)
	assert.Contains(t, f.Error(), "malformed response")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "validation", Outcome(ValidationFailure(errors.New("x"))))
	assert.Equal(t, "unauthorized", Outcome(NewFailure(401, "x")))
	assert.Equal(t, "backend", Outcome(NewFailure(400, "x")))
	assert.Equal(t, "network", Outcome(NetworkFailure(errors.New("x"))))
	assert.Equal(t, "persistence", Outcome(fmt.Errorf("%w: disk full", ErrPersistence)))
	assert.Equal(t, "network", Outcome(errors.New("unclassified")))
}
