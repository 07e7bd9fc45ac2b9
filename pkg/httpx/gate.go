package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alex2808pl/url-shortener/pkg/jwtx"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
)

const bearerPrefix = "Bearer "

// AccessVerifier fully validates an access token.
type AccessVerifier interface {
	CheckAccess(token string) (jwtx.Claims, error)
}

// BearerToken returns the token from a request carrying exactly one
// "Authorization: Bearer <token>" header. Any other shape reports false so
// the request is treated as anonymous rather than malformed.
func BearerToken(r *http.Request) (string, bool) {
	values := r.Header.Values("Authorization")
	if len(values) != 1 {
		return "", false
	}

	v := values[0]
	if !strings.HasPrefix(v, bearerPrefix) {
		return "", false
	}

	token := v[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Authenticate attaches a Principal for requests with a valid bearer token.
// Requests without one continue anonymously; requests with an invalid one
// are rejected with a generic 401 and the reason is only logged.
func Authenticate(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.CheckAccess(token)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("access token rejected", slog.Any("reason", err))
				writeBearerError(w)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{
				Subject: claims.Subject,
				Roles:   claims.Roles,
			})
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("sub", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 invalid_token response. The description is fixed so the response
// never tells the caller why the token failed.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication failed")
}
