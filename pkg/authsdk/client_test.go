package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alex2808pl/url-shortener/pkg/authsdk"
	"github.com/alex2808pl/url-shortener/pkg/httpx"
	"github.com/alex2808pl/url-shortener/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var signingKey = jwtx.Key("0123456789abcdef0123456789abcdef")

func accessToken(t *testing.T, roles ...string) string {
	t.Helper()
	codec, err := jwtx.NewCodec("")
	require.NoError(t, err)
	tok, err := codec.Sign(signingKey, jwtx.NewAccessClaims("alice", "Alice", roles, time.Now()))
	require.NoError(t, err)
	return tok
}

// fakeService mimics the token and profile endpoints.
type fakeService struct {
	t       *testing.T
	renewed atomic.Int32
	srv     *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	f := &fakeService{t: t}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.JwtResponse{
			Type: "Bearer", AccessToken: accessToken(t, "USER"), RefreshToken: "refresh-1", ExpiresIn: 900,
		})
	})

	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RefreshToken != "refresh-1" {
			authsdk.ErrAuthenticationFailed.WriteError(w)
			return
		}
		f.renewed.Add(1)
		httpx.WriteJSON(w, http.StatusOK, authsdk.JwtResponse{
			Type: "Bearer", AccessToken: "renewed-access", ExpiresIn: 900,
		})
	})

	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			authsdk.ErrUnauthorized.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.UserProfile{
			Login: "alice",
			Roles: []string{r.Header.Get("Authorization")},
		})
	})

	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, authsdk.HealthResponse{
			Status: "degraded",
			Checks: &authsdk.HealthChecks{Database: "error: disk I/O error", Tokens: "HS256"},
		})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func TestLogin(t *testing.T) {
	f := newFakeService(t)
	c := authsdk.NewSDKClient(f.srv.URL + "/")

	pair, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.Type)
	require.Equal(t, "refresh-1", pair.RefreshToken)

	_, err = c.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSessionRoles(t *testing.T) {
	f := newFakeService(t)
	c := authsdk.NewSDKClient(f.srv.URL)

	s, err := c.AuthenticateWithPassword(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, []string{"USER"}, s.Roles())
	require.False(t, s.HasRole("ADMIN"))

	_, err = s.GetUser(context.Background(), "bob")
	require.ErrorIs(t, err, authsdk.ErrForbidden)
}

func TestSessionRenewsExpiredAccessToken(t *testing.T) {
	f := newFakeService(t)
	c := authsdk.NewSDKClient(f.srv.URL)

	s := c.NewSessionFromTokens("stale-access", "refresh-1", 0)

	me, err := s.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer renewed-access"}, me.Roles)
	require.Equal(t, int32(1), f.renewed.Load())
	require.Equal(t, "refresh-1", s.RefreshToken(), "access-only renewal keeps the refresh token")

	_, err = s.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), f.renewed.Load(), "fresh token is reused")
}

func TestSessionWithoutRefreshToken(t *testing.T) {
	f := newFakeService(t)
	s := authsdk.NewSDKClient(f.srv.URL).NewSessionFromTokens("stale", "", 0)

	_, err := s.Me(context.Background())
	require.ErrorIs(t, err, authsdk.ErrNoRefreshToken)
}

func TestNonJSONErrorResponse(t *testing.T) {
	f := newFakeService(t)
	_, err := authsdk.NewSDKClient(f.srv.URL).GetLiveness(context.Background())

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeServerError, apiErr.Code)
}

func TestReadinessDegraded(t *testing.T) {
	f := newFakeService(t)
	health, err := authsdk.NewSDKClient(f.srv.URL).GetReadiness(context.Background())

	require.ErrorIs(t, err, authsdk.ErrNotReady)
	require.NotNil(t, health)
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "HS256", health.Checks.Tokens)
	require.Contains(t, health.Checks.Database, "disk I/O")
}
