package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/alex2808pl/url-shortener/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
)

// expiryBuffer renews the access token slightly before it actually expires.
const expiryBuffer = 30 * time.Second

// ErrNoRefreshToken is returned when the access token expired and the
// session holds no refresh token to renew it.
var ErrNoRefreshToken = errors.New("access token expired and no refresh token available")

// Session represents an authenticated session with automatic access token
// renewal. Safe for concurrent use.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	roles        []string
}

func newSession(client *SDKClient, pair *JwtResponse) *Session {
	s := &Session{client: client, refreshToken: pair.RefreshToken}
	s.setAccess(pair)
	return s
}

// NewSessionFromTokens creates a session from tokens obtained elsewhere.
// expiresIn is the access token lifetime in seconds.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, &JwtResponse{
		Type:         "Bearer",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// setAccess must be called with mu held for writing (or before s is shared).
func (s *Session) setAccess(pair *JwtResponse) {
	s.accessToken = pair.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(pair.ExpiresIn)*time.Second - expiryBuffer)
	s.roles = unverifiedRoles(pair.AccessToken)
}

// unverifiedRoles reads the roles claim for client side checks only. The
// server verifies the token on every request.
func unverifiedRoles(token string) []string {
	var claims jwtx.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	return claims.Roles
}

// getValidToken returns a valid access token, renewing it if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have renewed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	pair, err := s.client.Token(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to renew access token: %w", err)
	}
	s.setAccess(pair)

	return s.accessToken, nil
}

// Rotate replaces both tokens using the refresh token.
func (s *Session) Rotate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	pair, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.refreshToken = pair.RefreshToken
	s.setAccess(pair)
	return nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Roles returns the roles carried by the current access token.
func (s *Session) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles)
}

// HasRole reports whether the current access token carries role.
func (s *Session) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.roles, role)
}

func (s *Session) checkRole(role string) error {
	if !s.client.CheckRoles || role == "" || s.HasRole(role) {
		return nil
	}
	return ErrForbidden.WithDescription(fmt.Sprintf("session lacks role %s", role))
}

// Me returns the profile of the session's user.
func (s *Session) Me(ctx context.Context) (*UserProfile, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users/me", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetUser returns any user's profile.
// Requires: ADMIN role
func (s *Session) GetUser(ctx context.Context, login string) (*UserProfile, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, userPath(login), nil, nil, "ADMIN")
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetUserRoles replaces a user's roles. Tokens already issued keep the old
// roles until the next renewal.
// Requires: ADMIN role
func (s *Session) SetUserRoles(ctx context.Context, login string, roles []string) (*UserProfile, error) {
	body, err := encodeBody(RolesRequest{Roles: roles})
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut, userPath(login)+"/roles", body, jsonHeaders, "ADMIN")
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Register creates a user with any roles.
// Requires: ADMIN role when roles other than USER are requested
func (s *Session) Register(ctx context.Context, req RegistrationRequest) (*UserProfile, error) {
	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/registration", body, jsonHeaders, "")
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := decodeJSON(resp, &profile, http.StatusCreated); err != nil {
		return nil, err
	}
	return &profile, nil
}
