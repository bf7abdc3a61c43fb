package models

import "fmt"

// StateKind tags a SessionState.
type StateKind int

const (
	// StateUnknown means bootstrap has not resolved yet.
	StateUnknown StateKind = iota
	StateAuthenticated
	StateAnonymous
)

func (k StateKind) String() string {
	switch k {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// SessionState holds exactly one of Unknown, Authenticated(user) or Anonymous.
// The zero value is Unknown. Fields are unexported so the variants cannot be
// mixed.
type SessionState struct {
	kind StateKind
	user SessionUser
}

func Unknown() SessionState { return SessionState{kind: StateUnknown} }

func Anonymous() SessionState { return SessionState{kind: StateAnonymous} }

func Authenticated(u SessionUser) SessionState {
	return SessionState{kind: StateAuthenticated, user: u}
}

func (s SessionState) Kind() StateKind { return s.kind }

// User returns the authenticated user; ok is false for the other variants.
func (s SessionState) User() (SessionUser, bool) {
	if s.kind != StateAuthenticated {
		return SessionUser{}, false
	}
	return s.user, true
}

func (s SessionState) IsAuthenticated() bool { return s.kind == StateAuthenticated }

func (s SessionState) String() string {
	if s.kind == StateAuthenticated {
		return fmt.Sprintf("authenticated(%s)", s.user.Email)
	}
	return s.kind.String()
}

// VerificationKind tags a VerificationState.
type VerificationKind int

const (
	VerificationPending VerificationKind = iota
	VerificationSucceeded
	VerificationFailed
)

func (k VerificationKind) String() string {
	switch k {
	case VerificationSucceeded:
		return "succeeded"
	case VerificationFailed:
		return "failed"
	default:
		return "pending"
	}
}

// VerificationState is Pending, Succeeded(message) or Failed(message).
type VerificationState struct {
	kind    VerificationKind
	message string
}

func Pending() VerificationState { return VerificationState{kind: VerificationPending} }

func Succeeded(message string) VerificationState {
	return VerificationState{kind: VerificationSucceeded, message: message}
}

func Failed(message string) VerificationState {
	return VerificationState{kind: VerificationFailed, message: message}
}

func (s VerificationState) Kind() VerificationKind { return s.kind }

func (s VerificationState) Message() string { return s.message }

// Resolved reports whether the state is terminal.
func (s VerificationState) Resolved() bool { return s.kind != VerificationPending }

func (s VerificationState) String() string {
	if s.kind == VerificationPending {
		return s.kind.String()
	}
	return fmt.Sprintf("%s(%s)", s.kind, s.message)
}
