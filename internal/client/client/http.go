package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/common"
)

// DefaultAPIPrefix is the relay's route prefix. Point the client at the
// identity service directly with "/api/v1/auth".
const DefaultAPIPrefix = "/api/auth"

const maxResponseBody = 1 << 20

var _ Client = (*HTTPClient)(nil)

// HTTPClient implements Client over the relay's JSON routes.
type HTTPClient struct {
	baseURL string
	prefix  string
	http    *http.Client
}

// NewHTTPClient returns a client for baseURL (scheme and host, e.g.
// "http://localhost:3000"). A zero timeout leaves requests bounded only by
// their context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	return NewHTTPClientWith(baseURL, DefaultAPIPrefix, &http.Client{Timeout: timeout})
}

// NewHTTPClientWith is NewHTTPClient with an explicit route prefix and *http.Client.
func NewHTTPClientWith(baseURL, prefix string, hc *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  "/" + strings.Trim(prefix, "/"),
		http:    hc,
	}, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegistrationRequest) (string, error) {
	var out registeredDTO
	if err := c.do(ctx, http.MethodPost, "/register", req, "", &out, "Registration failed"); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var out loginDTO
	if err := c.do(ctx, http.MethodPost, "/login", creds, "", &out, "Login failed"); err != nil {
		return nil, err
	}
	res, err := out.toModel()
	if err != nil {
		return nil, MalformedResponse(http.StatusOK, err)
	}
	return res, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context, accessToken string) (*models.SessionUser, error) {
	var out userDTO
	if err := c.do(ctx, http.MethodGet, "/me", nil, accessToken, &out, "Not authenticated"); err != nil {
		return nil, err
	}
	user, err := out.toModel()
	if err != nil {
		return nil, MalformedResponse(http.StatusOK, err)
	}
	return user, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	var out messageDTO
	path := "/verify-email?" + url.Values{"token": {token}}.Encode()
	if err := c.do(ctx, http.MethodPost, path, nil, "", &out, "Verification failed"); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, accessToken, nil, "Logout failed")
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*models.LoginResult, error) {
	var out loginDTO
	if err := c.do(ctx, http.MethodPost, "/refresh", refreshDTO{RefreshToken: refreshToken}, "", &out, "Invalid refresh token"); err != nil {
		return nil, err
	}
	res, err := out.toModel()
	if err != nil {
		return nil, MalformedResponse(http.StatusOK, err)
	}
	return res, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends one request and decodes a 2xx body into out (when out is non-nil).
// Non-2xx answers become a *Failure whose Detail is the body's "detail" field,
// or fallback when the body has none.
func (c *HTTPClient) do(ctx context.Context, method, path string, in any, token string, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+c.prefix+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return NetworkFailure(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return NetworkFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var d detailDTO
		_ = json.Unmarshal(data, &d)
		if d.Detail == "" {
			d.Detail = fallback
		}
		return NewFailure(resp.StatusCode, d.Detail)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return MalformedResponse(resp.StatusCode, err)
	}
	return nil
}
