package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"campus-records/internal/model"
	"campus-records/internal/service"
)

type tokenVerifier interface {
	Verify(tokenString string) (*service.Claims, error)
	IsExpired(tokenString string) bool
}

type contextKey string

const principalContextKey contextKey = "principal"

// AuthMiddleware establishes the request's principal from a bearer
// token. It never rejects a request itself: a missing, malformed,
// unverifiable or expired token just leaves the request anonymous, and
// the policy layer decides whether anonymous is acceptable.
type AuthMiddleware struct {
	tokens tokenVerifier
}

func NewAuthMiddleware(tokens tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			// Already authenticated earlier in the chain.
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(header[7:])
		claims, err := m.tokens.Verify(token)
		if err != nil {
			slog.Debug("token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if m.tokens.IsExpired(token) {
			slog.Debug("token expired", "subject", claims.Subject)
			next.ServeHTTP(w, r)
			return
		}

		principal := &model.Principal{Subject: claims.Subject, Roles: claims.Roles}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(*model.Principal)
	return principal, ok && principal != nil
}
