package http

import (
	"net/http"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/pkg/httpx"
)

// DefaultPolicy is the route table enforced in front of every handler,
// including handlers mounted by the embedding application through
// Router.Handle. Rules are checked in order.
var DefaultPolicy = httpx.MustPolicy(
	httpx.Rule{Pattern: "/auth/**", Access: httpx.Public},
	httpx.Rule{Pattern: "/swagger/**", Access: httpx.Public},
	httpx.Rule{Method: http.MethodGet, Pattern: "/livez", Access: httpx.Public},
	httpx.Rule{Method: http.MethodGet, Pattern: "/readyz", Access: httpx.Public},
	httpx.Rule{Pattern: "/admin/**", Access: httpx.RequireRole, Role: string(domain.RoleAdmin)},
	httpx.Rule{Method: http.MethodPost, Pattern: "/createUrl", Access: httpx.RequireRole, Role: string(domain.RoleUser)},

	// Short link redirects.
	httpx.Rule{Method: http.MethodGet, Pattern: "/*", Access: httpx.Public},
)
