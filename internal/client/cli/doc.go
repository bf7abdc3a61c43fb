// Package cli provides the interactive session client.
//
// It wires configuration, the backend transport, the token store and the
// session service, then runs a REPL that stands in for the browser UI: it
// bootstraps the session on start, prints every session transition and
// dispatches user commands.
//
// Key features:
//   - Register / Login / Logout
//   - whoami (refetch the current user) and renew (trade the refresh token)
//   - verify <link|token> for email verification links
//   - An optional Prometheus /metrics endpoint
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
