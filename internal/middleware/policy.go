package middleware

import (
	"net/http"
	"strings"

	"campus-records/internal/model"
)

type access int

const (
	accessPublic access = iota
	accessAuthenticated
	accessRoles
)

// Rule maps one (method, path pattern) pair to an access requirement.
// Patterns are segment-based: "*" matches exactly one segment, a
// trailing "/*" matches one or more remaining segments, and the method
// "*" matches any method.
type Rule struct {
	Method  string
	Pattern string
	access  access
	roles   []string
}

func Public(method string, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, access: accessPublic}
}

func Authenticated(method string, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, access: accessAuthenticated}
}

func Roles(method string, pattern string, roles ...string) Rule {
	return Rule{Method: method, Pattern: pattern, access: accessRoles, roles: roles}
}

// Policy is an ordered rule table evaluated top to bottom per request;
// the first matching rule wins, so specific patterns must be listed
// before catch-alls. Requests matching no rule fall through to the
// configured default.
type Policy struct {
	rules       []Rule
	defaultDeny bool
}

// NewPolicy builds a policy with the given unmatched-request default,
// either "deny" or "authenticated".
func NewPolicy(defaultDecision string, rules ...Rule) *Policy {
	return &Policy{rules: rules, defaultDeny: defaultDecision != "authenticated"}
}

// DefaultRules is the route-level access table for this API. Finer
// checks (the student-record owner override) live with the handlers.
func DefaultRules() []Rule {
	return []Rule{
		Public(http.MethodPost, "/api/auth/login"),
		Public(http.MethodGet, "/health"),

		Authenticated(http.MethodGet, "/api/auth/me"),

		Roles(http.MethodPost, "/api/users", model.RoleAdmin),
		Roles(http.MethodGet, "/api/users", model.RoleAdmin),
		Roles(http.MethodGet, "/api/users/active", model.RoleAdmin),
		Roles(http.MethodGet, "/api/users/search", model.RoleAdmin, model.RoleTeacher),
		Roles(http.MethodGet, "/api/users/role/*", model.RoleAdmin),
		Authenticated(http.MethodGet, "/api/users/username/*"),
		Roles(http.MethodGet, "/api/users/*", model.RoleAdmin, model.RoleTeacher),
		Roles(http.MethodPut, "/api/users/*", model.RoleAdmin),
		Roles(http.MethodDelete, "/api/users/*", model.RoleAdmin),
		Roles(http.MethodPatch, "/api/users/*", model.RoleAdmin),

		Roles(http.MethodGet, "/api/students", model.RoleAdmin, model.RoleTeacher),
		Roles(http.MethodGet, "/api/students/*", model.RoleAdmin, model.RoleTeacher, model.RoleStudent),
		Roles(http.MethodPost, "/api/students", model.RoleAdmin),
		Roles(http.MethodPut, "/api/students/*", model.RoleAdmin),
		Roles(http.MethodDelete, "/api/students/*", model.RoleAdmin),

		Authenticated(http.MethodGet, "/api/roles"),
		Roles("*", "/api/roles/*", model.RoleAdmin),
		Roles(http.MethodPost, "/api/roles", model.RoleAdmin),
		Roles(http.MethodPut, "/api/roles", model.RoleAdmin),
		Roles(http.MethodDelete, "/api/roles", model.RoleAdmin),
	}
}

// Enforce evaluates the table against the request and the principal the
// authenticator attached. No principal on a protected rule yields 401;
// a principal whose roles do not intersect the rule's yields 403.
func (p *Policy) Enforce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule, matched := p.match(r.Method, r.URL.Path)
		if matched && rule.access == accessPublic {
			next.ServeHTTP(w, r)
			return
		}

		principal, authenticated := PrincipalFromContext(r.Context())
		if !authenticated {
			writeDenied(w, http.StatusUnauthorized, "authentication required")
			return
		}

		switch {
		case !matched:
			if p.defaultDeny {
				writeDenied(w, http.StatusForbidden, "access denied")
				return
			}
		case rule.access == accessRoles:
			if !principal.HasAnyRole(rule.roles...) {
				writeDenied(w, http.StatusForbidden, "insufficient permissions")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (p *Policy) match(method string, path string) (Rule, bool) {
	for _, rule := range p.rules {
		if rule.Method != "*" && rule.Method != method {
			continue
		}
		if matchPattern(rule.Pattern, path) {
			return rule, true
		}
	}
	return Rule{}, false
}

func matchPattern(pattern string, path string) bool {
	patternSegs := splitPath(pattern)
	pathSegs := splitPath(path)

	for i, seg := range patternSegs {
		// Trailing wildcard swallows the rest of the path.
		if seg == "*" && i == len(patternSegs)-1 {
			return len(pathSegs) >= len(patternSegs)
		}
		if i >= len(pathSegs) {
			return false
		}
		if seg != "*" && seg != pathSegs[i] {
			return false
		}
	}

	return len(pathSegs) == len(patternSegs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func writeDenied(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	code := "FORBIDDEN"
	if status == http.StatusUnauthorized {
		code = "UNAUTHORIZED"
	}

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
