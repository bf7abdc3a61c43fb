package fakeidp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophsession/internal/common"
)

// Handler serves the relay routes under prefix, e.g. "/api/auth".
func (b *Backend) Handler(prefix string) http.Handler {
	prefix = "/" + strings.Trim(prefix, "/")
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+prefix+"/register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decode(w, r, &req) {
			return
		}
		u, err := b.Register(req)
		respond(w, http.StatusCreated, u, err)
	})

	mux.HandleFunc("POST "+prefix+"/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decode(w, r, &req) {
			return
		}
		res, err := b.Login(req)
		respond(w, http.StatusOK, res, err)
	})

	mux.HandleFunc("POST "+prefix+"/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if !decode(w, r, &req) {
			return
		}
		res, err := b.Refresh(req.RefreshToken)
		respond(w, http.StatusOK, res, err)
	})

	mux.HandleFunc("GET "+prefix+"/me", func(w http.ResponseWriter, r *http.Request) {
		token, _ := common.TokenFromBearer(r.Header.Get(common.AuthorizationHeaderName))
		u, err := b.Me(token)
		respond(w, http.StatusOK, u, err)
	})

	mux.HandleFunc("POST "+prefix+"/verify-email", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			respond(w, 0, nil, fail(http.StatusUnprocessableEntity, ""))
			return
		}
		msg, err := b.VerifyEmail(token)
		respond(w, http.StatusOK, map[string]string{"message": msg}, err)
	})

	mux.HandleFunc("POST "+prefix+"/logout", func(w http.ResponseWriter, r *http.Request) {
		token, _ := common.TokenFromBearer(r.Header.Get(common.AuthorizationHeaderName))
		msg, err := b.Logout(token)
		respond(w, http.StatusOK, map[string]string{"message": msg}, err)
	})

	return mux
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		respond(w, 0, nil, fail(http.StatusUnprocessableEntity, ""))
		return false
	}
	return true
}

// respond writes v with status, or err as {"detail": ...}. An empty detail
// is sent as an empty object, like a validation error body the relay cannot
// summarize.
func respond(w http.ResponseWriter, status int, v any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			e = fail(http.StatusInternalServerError, "Internal server error")
		}
		w.WriteHeader(e.Status)
		if e.Detail == "" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": e.Detail})
		return
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
