package client

import (
	"errors"
	"net/http"
)

// Error kinds. Every failure returned by this package wraps exactly one of
// them, so callers branch with errors.Is.
var (
	// ErrValidation marks malformed input rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrBackend marks a non-success answer from the identity backend.
	ErrBackend = errors.New("backend failure")
	// ErrUnauthorized is an ErrBackend refinement for 401/403 answers.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable marks a call that could not complete (network failure).
	ErrUnavailable = errors.New("server unavailable")
	// ErrPersistence marks a token store failure.
	ErrPersistence = errors.New("persistence failure")
)

// Class is the HTTP-style status class of a failure.
type Class int

const (
	ClassNetwork Class = iota
	ClassClient
	ClassServer
)

func (c Class) String() string {
	switch c {
	case ClassClient:
		return "client"
	case ClassServer:
		return "server"
	default:
		return "network"
	}
}

// Failure is the typed failure of an AuthBackend call. Detail is the
// human-readable reason, Status the upstream status code (0 when no
// response was received).
type Failure struct {
	Status int
	Detail string
	kind   error
	cause  error
}

// NewFailure builds a failure from a response status and detail.
func NewFailure(status int, detail string) *Failure {
	kind := ErrBackend
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = ErrUnauthorized
	}
	return &Failure{Status: status, Detail: detail, kind: kind}
}

// NetworkFailure wraps a transport error.
func NetworkFailure(cause error) *Failure {
	return &Failure{Detail: cause.Error(), kind: ErrUnavailable, cause: cause}
}

// MalformedResponse marks a success status whose body could not be decoded.
func MalformedResponse(status int, cause error) *Failure {
	return &Failure{Status: status, Detail: "malformed response: " + cause.Error(), kind: ErrBackend, cause: cause}
}

// ValidationFailure wraps an input validation error.
func ValidationFailure(cause error) *Failure {
	return &Failure{Detail: cause.Error(), kind: ErrValidation, cause: cause}
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return f.kind.Error()
	}
	return f.Detail
}

// Is matches the kind sentinel. ErrUnauthorized failures also match ErrBackend.
func (f *Failure) Is(target error) bool {
	if target == f.kind {
		return true
	}
	return target == ErrBackend && f.kind == ErrUnauthorized
}

func (f *Failure) Unwrap() error { return f.cause }

// Class derives the status class from Status.
func (f *Failure) Class() Class {
	switch {
	case f.Status >= 500:
		return ClassServer
	case f.Status >= 400:
		return ClassClient
	default:
		return ClassNetwork
	}
}

// Outcome names the kind of err for metrics and logs: "ok", "validation",
// "unauthorized", "backend", "network" or "persistence".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrBackend):
		return "backend"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "network"
	}
}

// Message returns the backend-supplied detail of err when there is one and
// fallback otherwise. Network failures always yield fallback: their detail
// is a transport error, not a reason meant for the user.
func Message(err error, fallback string) string {
	var f *Failure
	if !errors.As(err, &f) {
		return fallback
	}
	if errors.Is(f, ErrUnavailable) || f.Detail == "" {
		return fallback
	}
	return f.Detail
}
