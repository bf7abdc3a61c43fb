package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result is
// twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b in place. Used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// BearerValue formats an access token for the authorization header.
func BearerValue(token string) string {
	return BearerPrefix + token
}

// TokenFromBearer extracts the token from an authorization value. The scheme
// is matched case-insensitively; ok is false when the value is not a bearer
// credential or the token part is empty.
func TokenFromBearer(value string) (token string, ok bool) {
	if len(value) < len(BearerPrefix) || !strings.EqualFold(value[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	token = strings.TrimSpace(value[len(BearerPrefix):])
	return token, token != ""
}
