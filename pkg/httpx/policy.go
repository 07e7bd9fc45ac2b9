package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// Access is the level of authentication a route demands.
type Access int

const (
	// Authenticated requires any valid access token. It is the zero value so
	// a forgotten field fails closed.
	Authenticated Access = iota
	Public
	RequireRole
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case RequireRole:
		return "role"
	default:
		return "authenticated"
	}
}

// Rule maps a method and path pattern to an access level. An empty Method
// matches every method, and a GET rule also covers HEAD as ServeMux does. Pattern is either a path.Match glob, where "*" never
// crosses a "/", or a prefix ending in "/**" that matches the prefix itself
// and everything below it.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Role    string
}

func (r Rule) matches(method, p string) bool {
	if r.Method != "" && r.Method != method &&
		(r.Method != http.MethodGet || method != http.MethodHead) {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	ok, _ := path.Match(r.Pattern, p)
	return ok
}

// Policy is an ordered route table. The first matching rule wins; paths no
// rule matches require authentication.
type Policy struct {
	rules []Rule
}

// NewPolicy validates the rules and returns the table. Patterns must be
// absolute and well formed, and role rules must name a role.
func NewPolicy(rules ...Rule) (Policy, error) {
	var errs []error
	for i, r := range rules {
		if !strings.HasPrefix(r.Pattern, "/") {
			errs = append(errs, fmt.Errorf("rule %d: pattern %q must start with /", i, r.Pattern))
			continue
		}
		if _, err := path.Match(strings.TrimSuffix(r.Pattern, "/**"), ""); err != nil {
			errs = append(errs, fmt.Errorf("rule %d: pattern %q: %w", i, r.Pattern, err))
		}
		if r.Access == RequireRole && r.Role == "" {
			errs = append(errs, fmt.Errorf("rule %d: role rule without a role", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Policy{}, err
	}
	return Policy{rules: append([]Rule(nil), rules...)}, nil
}

// MustPolicy is NewPolicy that panics on an invalid table.
func MustPolicy(rules ...Rule) Policy {
	p, err := NewPolicy(rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup returns the rule governing method and urlPath.
func (p Policy) Lookup(method, urlPath string) Rule {
	clean := path.Clean("/" + urlPath)
	for _, r := range p.rules {
		if r.matches(method, clean) {
			return r
		}
	}
	return Rule{Pattern: "/**", Access: Authenticated}
}

// Rules returns a copy of the table, e.g. for audit logging at startup.
func (p Policy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Authorize enforces p. It must run after Authenticate. Anonymous callers on
// protected routes get 401; authenticated callers lacking the role get 403.
func Authorize(p Policy) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule := p.Lookup(r.Method, r.URL.Path)
			if rule.Access == Public {
				next.ServeHTTP(w, r)
				return
			}

			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			if rule.Access == RequireRole && !principal.HasRole(rule.Role) {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
