// Package common contains shared constants and small helpers used across the
// session client.
package common

// Keys of the persisted token pair. The access and refresh tokens are the
// only keys that decide whether a session exists; the rest are advisory.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	TokenTypeKey    = "token_type"
	ExpiresInKey    = "expires_in"
)

// AuthorizationHeaderName is the HTTP header (and gRPC metadata key) that
// carries the bearer credential on authenticated calls.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the access token in the authorization value.
const BearerPrefix = "Bearer "

// DefaultTokenType is used when the backend omits token_type.
const DefaultTokenType = "bearer"
