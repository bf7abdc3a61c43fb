// Package client contains the AuthBackend side of the session manager.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the four
//     identity operations (Register, Login, CurrentUser, VerifyEmail) plus
//     Logout and RefreshToken.
//  2. HTTPClient, which talks JSON to the relay routes under /api/auth and
//     maps non-2xx answers carrying {"detail": "..."} to *Failure values.
//  3. GRPCClient, which calls the same operations as unary RPCs with
//     google.protobuf.Struct payloads and maps status codes to *Failure.
//  4. Instrumented, a Client decorator recording Prometheus metrics.
//  5. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations for the token store.
//
// # Error Handling
//
// Every failure wraps one kind sentinel: ErrValidation, ErrBackend
// (refined by ErrUnauthorized), ErrUnavailable or ErrPersistence. Match them
// with errors.Is; use Message to get user-facing text.
//
// Concurrency & Contexts
//
// Implementations are safe for concurrent use. All operations accept a
// context.Context and honor cancellation and deadlines.
package client
