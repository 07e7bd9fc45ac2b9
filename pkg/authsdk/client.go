package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the authentication service. It provides the
// unauthenticated operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckRoles makes a Session refuse calls whose required role is missing
	// from its access token before sending them. Set to false in tests that
	// exercise the server side checks.
	// Default: true
	CheckRoles bool
}

// NewSDKClient creates a new auth service client with role checking enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckRoles: true,
	}
}

// Login exchanges credentials for an access and refresh token pair.
func (c *SDKClient) Login(ctx context.Context, login, password string) (*JwtResponse, error) {
	return c.postToken(ctx, "/auth/login", LoginRequest{Login: login, Password: password})
}

// Token renews the access token only. The response carries no refresh token.
func (c *SDKClient) Token(ctx context.Context, refreshToken string) (*JwtResponse, error) {
	return c.postToken(ctx, "/auth/token", RefreshRequest{RefreshToken: refreshToken})
}

// Refresh renews both tokens.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*JwtResponse, error) {
	return c.postToken(ctx, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken})
}

// Register creates a user anonymously. Only the default role may be asked
// for; use Session.Register to create users with other roles.
func (c *SDKClient) Register(ctx context.Context, req RegistrationRequest) (*UserProfile, error) {
	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/registration", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := decodeJSON(resp, &profile, http.StatusCreated); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AuthenticateWithPassword logs in and returns a Session over the pair.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, login, password string) (*Session, error) {
	pair, err := c.Login(ctx, login, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, pair), nil
}

// AuthenticateWithRefreshToken creates a session from an existing refresh
// token, rotating it.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	pair, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, pair), nil
}

// ErrNotReady is returned by GetReadiness, together with the decoded
// report, when the service answers 503.
var ErrNotReady = errors.New("authsdk: service not ready")

// GetLiveness reports whether the service process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.getHealth(ctx, "/livez")
}

// GetReadiness reports whether the service can authenticate requests. A
// degraded service yields both the report and ErrNotReady.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.getHealth(ctx, "/readyz")
}

func (c *SDKClient) getHealth(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if resp.StatusCode == http.StatusServiceUnavailable {
		if err := decodeJSON(resp, &health, http.StatusServiceUnavailable); err != nil {
			return nil, err
		}
		return &health, fmt.Errorf("%w: %s", ErrNotReady, health.Status)
	}
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *SDKClient) postToken(ctx context.Context, path string, v any) (*JwtResponse, error) {
	body, err := encodeBody(v)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var pair JwtResponse
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return &pair, nil
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func encodeBody(v any) (*bytes.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

func userPath(login string) string {
	return "/admin/users/" + url.PathEscape(login)
}
