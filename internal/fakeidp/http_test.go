package fakeidp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ErrorBodies(t *testing.T) {
	h := newBackend(t).Handler("/api/auth")

	tests := []struct {
		name   string
		method string
		target string
		body   string
		header string
		status int
		want   string
	}{
		{"me without token", http.MethodGet, "/api/auth/me", "", "", http.StatusUnauthorized, `{"detail":"Not authenticated"}`},
		{"me with garbage", http.MethodGet, "/api/auth/me", "", "Bearer nope", http.StatusUnauthorized, `{"detail":"Invalid authentication credentials"}`},
		{"login bad json", http.MethodPost, "/api/auth/login", "{", "", http.StatusUnprocessableEntity, `{}`},
		{"verify without token", http.MethodPost, "/api/auth/verify-email", "", "", http.StatusUnprocessableEntity, `{}`},
		{"verify unknown token", http.MethodPost, "/api/auth/verify-email?token=x", "", "", http.StatusBadRequest, `{"detail":"Invalid or expired verification token"}`},
		{"wrong method", http.MethodGet, "/api/auth/login", "", "", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.want != "" {
				assert.JSONEq(t, tt.want, rr.Body.String())
			}
		})
	}
}
