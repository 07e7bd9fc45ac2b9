package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alex2808pl/url-shortener/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func fromIP(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remote
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	req := fromIP("192.168.1.1:12345")
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req), "forwarding headers are ignored")

	req.RemoteAddr = "not-a-hostport"
	require.Equal(t, "not-a-hostport", httpx.IPKeyExtractor(req))
}

func TestForwardedIPKeyExtractor(t *testing.T) {
	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := fromIP("192.168.1.1:12345")
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ForwardedIPKeyExtractor(req))
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		req := fromIP("192.168.1.1:12345")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.ForwardedIPKeyExtractor(req))
	})

	t.Run("falls back to peer", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.ForwardedIPKeyExtractor(fromIP("192.168.1.1:1")))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extract := httpx.CompositeKeyExtractor(":", httpx.PrincipalKeyExtractor, httpx.IPKeyExtractor)

	req := fromIP("10.0.0.1:1")
	require.Equal(t, "10.0.0.1", extract(req))

	req = req.WithContext(httpx.WithPrincipal(req.Context(), httpx.Principal{Subject: "alice"}))
	require.Equal(t, "alice:10.0.0.1", extract(req))
}

func TestRateLimit(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimit(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}, httpx.IPKeyExtractor)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, fromIP("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimit(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, httpx.IPKeyExtractor)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.1:2"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code, "same IP, different port")

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.2:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty key is exempt", func(t *testing.T) {
		h := httpx.RateLimit(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, fromIP("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("zero config disables limiting", func(t *testing.T) {
		h := httpx.RateLimit(httpx.RateLimitConfig{}, httpx.IPKeyExtractor)(okHandler)

		for range 10 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, fromIP("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitProfiles(t *testing.T) {
	for _, cfg := range []httpx.RateLimitConfig{httpx.CredentialLimit, httpx.RenewalLimit, httpx.AccountLimit} {
		require.True(t, cfg.Enabled())
	}
	require.Less(t, httpx.CredentialLimit.RequestsPerWindow, httpx.RenewalLimit.RequestsPerWindow)
	require.Less(t, httpx.RenewalLimit.RequestsPerWindow, httpx.AccountLimit.RequestsPerWindow)
}
