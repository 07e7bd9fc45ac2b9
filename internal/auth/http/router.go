package http

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alex2808pl/url-shortener/internal/auth/service"
	"github.com/alex2808pl/url-shortener/internal/auth/store"
	"github.com/alex2808pl/url-shortener/pkg/httpx"
	"github.com/alex2808pl/url-shortener/pkg/slogx"

	_ "github.com/alex2808pl/url-shortener/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits configures the per-IP limits on the /auth endpoints and the
// per-caller limit on the account endpoints.
type RateLimits struct {
	Credential httpx.RateLimitConfig // login, registration
	Renewal    httpx.RateLimitConfig // token, refresh
	Account    httpx.RateLimitConfig // /users/me, /admin/users

	// TrustProxy keys limits on X-Forwarded-For instead of the peer address.
	TrustProxy bool
}

// DefaultRateLimits are used when Router.Limits is left zero.
var DefaultRateLimits = RateLimits{
	Credential: httpx.CredentialLimit,
	Renewal:    httpx.RenewalLimit,
	Account:    httpx.AccountLimit,
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux *http.ServeMux

	// Policy is enforced on every request after authentication.
	Policy httpx.Policy
	Limits RateLimits

	middlewares  []httpx.Middleware
	algorithm    string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService
	UserService *service.UserService

	once    sync.Once
	handler http.Handler
}

func NewRouter(
	verifier httpx.AccessVerifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		Policy:       DefaultPolicy,
		Limits:       DefaultRateLimits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
	if a, ok := verifier.(interface{ Algorithm() string }); ok {
		r.algorithm = a.Algorithm()
	}

	// Outermost first: the request logger must see panics and rejections.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.Authenticate(verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	for _, rule := range r.Policy.Rules() {
		r.logger.Debug("route policy",
			slog.String("method", rule.Method),
			slog.String("pattern", rule.Pattern),
			slog.String("access", rule.Access.String()),
			slog.String("role", rule.Role),
		)
	}
}

// Handle mounts an application handler behind the same authentication and
// route policy as the built-in endpoints.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, h)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			URL Shortener Authentication API
//	@version		1.0.0
//	@description	Stateless token authentication. Login returns a short-lived access token (15 minutes) and a long-lived refresh token (30 days).
//	@description
//	@description				Tokens are HMAC-signed JWTs and cannot be revoked before they expire.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.once.Do(func() {
		mws := append(r.middlewares, httpx.Authorize(r.Policy))
		r.handler = httpx.Chain(r.Mux, mws...)
	})
	r.handler.ServeHTTP(w, req)
}

func (r *Router) keyExtractor() httpx.KeyExtractor {
	if r.Limits.TrustProxy {
		return httpx.ForwardedIPKeyExtractor
	}
	return httpx.IPKeyExtractor
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}
	key := r.keyExtractor()

	// Credential endpoints share one bucket per IP so login and registration
	// cannot be alternated to double the budget.
	credential := httpx.RateLimit(r.Limits.Credential, key)
	renewal := httpx.RateLimit(r.Limits.Renewal, key)

	r.Mux.Handle("POST /auth/login", httpx.Chain(http.HandlerFunc(h.HandleLogin), credential))
	r.Mux.Handle("POST /auth/registration", httpx.Chain(http.HandlerFunc(h.HandleRegister), credential))
	r.Mux.Handle("POST /auth/token", httpx.Chain(http.HandlerFunc(h.HandleToken), renewal))
	r.Mux.Handle("POST /auth/refresh", httpx.Chain(http.HandlerFunc(h.HandleRefresh), renewal))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// Callers reach these authenticated, so each subject gets its own bucket
	// per address.
	account := httpx.RateLimit(r.Limits.Account,
		httpx.CompositeKeyExtractor("|", httpx.PrincipalKeyExtractor, r.keyExtractor()))

	r.Mux.Handle("GET /users/me", httpx.Chain(http.HandlerFunc(h.HandleMe), account))
	r.Mux.Handle("GET /admin/users/{login}", httpx.Chain(http.HandlerFunc(h.HandleGet), account))
	r.Mux.Handle("PUT /admin/users/{login}/roles", httpx.Chain(http.HandlerFunc(h.HandleSetRoles), account))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.algorithm))
}
