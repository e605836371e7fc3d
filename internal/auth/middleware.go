package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// RoleResolver re-reads a principal's role from a source of truth.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (rbac.Role, error)
}

// Authenticator attaches a verified principal to each request.
type Authenticator struct {
	verifier Verifier
	roles    RoleResolver
	logger   *slog.Logger
}

// NewAuthenticator builds the bearer middleware. roles may be nil, in which
// case the role claim carried by the token is trusted.
func NewAuthenticator(verifier Verifier, roles RoleResolver, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{verifier: verifier, roles: roles, logger: logger}
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			httpx.Fail(w, http.StatusUnauthorized, "Missing token")
			return
		}
		principal, err := a.verifier.Verify(r.Context(), token)
		if err != nil {
			a.logger.Warn("token verification failed", slog.Any("error", err), slog.String("path", r.URL.Path))
			httpx.Fail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if a.roles != nil {
			role, err := a.roles.ResolveRole(r.Context(), principal.ID)
			if err != nil {
				a.logger.Warn("role lookup failed", slog.Any("error", err), slog.String("principal", principal.ID))
				httpx.Fail(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			principal.Role = role
			principal.Metadata = withRole(principal.Metadata, role)
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
	})
}

// withRole copies metadata with its role entry replaced.
func withRole(metadata map[string]any, role rbac.Role) map[string]any {
	out := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	out["role"] = string(role)
	return out
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || strings.EqualFold(header, "bearer") {
		return "", false
	}
	const prefix = "bearer "
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		header = header[len(prefix):]
	}
	token := strings.TrimSpace(header)
	return token, token != ""
}
