package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alex2808pl/url-shortener/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var testPolicy = httpx.MustPolicy(
	httpx.Rule{Pattern: "/auth/**", Access: httpx.Public},
	httpx.Rule{Method: http.MethodGet, Pattern: "/admin/**", Access: httpx.RequireRole, Role: "ADMIN"},
	httpx.Rule{Method: http.MethodGet, Pattern: "/*", Access: httpx.Public},
	httpx.Rule{Method: http.MethodPost, Pattern: "/createUrl", Access: httpx.RequireRole, Role: "USER"},
)

func TestPolicyLookup(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   httpx.Access
	}{
		{http.MethodPost, "/auth/login", httpx.Public},
		{http.MethodPost, "/auth", httpx.Public},
		{http.MethodPost, "/authx", httpx.Authenticated},
		{http.MethodGet, "/abc123", httpx.Public},
		{http.MethodHead, "/abc123", httpx.Public},
		{http.MethodHead, "/livez", httpx.Public},
		{http.MethodHead, "/admin/users/bob", httpx.RequireRole},
		{http.MethodOptions, "/abc123", httpx.Authenticated},
		{http.MethodGet, "/users/me", httpx.Authenticated},
		{http.MethodGet, "/admin/users/bob", httpx.RequireRole},
		{http.MethodDelete, "/admin/users/bob", httpx.Authenticated},
		{http.MethodPost, "/createUrl", httpx.RequireRole},
		{http.MethodPost, "/somethingElse", httpx.Authenticated},
		{http.MethodGet, "/auth/../admin/x", httpx.RequireRole},
		{http.MethodGet, "//auth/login", httpx.Public},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, testPolicy.Lookup(tt.method, tt.path).Access)
		})
	}
}

func TestNewPolicyValidation(t *testing.T) {
	_, err := httpx.NewPolicy(httpx.Rule{Pattern: "relative", Access: httpx.Public})
	require.Error(t, err)

	_, err = httpx.NewPolicy(httpx.Rule{Pattern: "/[", Access: httpx.Public})
	require.Error(t, err)

	_, err = httpx.NewPolicy(httpx.Rule{Pattern: "/admin/**", Access: httpx.RequireRole})
	require.Error(t, err)

	p, err := httpx.NewPolicy(httpx.Rule{Pattern: "/livez", Access: httpx.Public})
	require.NoError(t, err)
	require.Len(t, p.Rules(), 1)
}

func TestAuthorize(t *testing.T) {
	h := httpx.Authorize(testPolicy)(okHandler)

	serve := func(method, path string, p *httpx.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if p != nil {
			req = req.WithContext(httpx.WithPrincipal(req.Context(), *p))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	user := &httpx.Principal{Subject: "alice", Roles: []string{"USER"}}
	admin := &httpx.Principal{Subject: "root", Roles: []string{"ADMIN"}}

	require.Equal(t, http.StatusOK, serve(http.MethodPost, "/auth/login", nil).Code)
	require.Equal(t, http.StatusOK, serve(http.MethodGet, "/abc", nil).Code)

	rec := serve(http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	require.Equal(t, http.StatusOK, serve(http.MethodGet, "/users/me", user).Code)

	require.Equal(t, http.StatusUnauthorized, serve(http.MethodPost, "/createUrl", nil).Code)
	require.Equal(t, http.StatusOK, serve(http.MethodPost, "/createUrl", user).Code)
	require.Equal(t, http.StatusForbidden, serve(http.MethodPost, "/createUrl", admin).Code)

	require.Equal(t, http.StatusForbidden, serve(http.MethodGet, "/admin/users/alice", user).Code)
	require.Equal(t, http.StatusOK, serve(http.MethodGet, "/admin/users/alice", admin).Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestRecover(t *testing.T) {
	h := httpx.Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "server_error")
}
