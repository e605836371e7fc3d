package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// Gate wires Check into HTTP handlers.
type Gate struct {
	Logger *slog.Logger
	// OnDeny, when set, is told the level of every refused request.
	OnDeny func(level Level)
}

// Require ensures the current principal satisfies level.
func (g Gate) Require(level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(w, r, next, Requirement{Level: level})
		})
	}
}

// RequireSelf ensures the principal owns the resource named by the URL
// parameter param, or is an admin.
func (g Gate) RequireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(w, r, next, Requirement{Level: LevelSelf, Owner: chi.URLParam(r, param)})
		})
	}
}

func (g Gate) serve(w http.ResponseWriter, r *http.Request, next http.Handler, req Requirement) {
	p := PrincipalFromContext(r.Context())
	if err := Check(p, req); err != nil {
		if g.Logger != nil {
			attrs := []any{slog.String("level", req.Level.String()), slog.String("path", r.URL.Path)}
			if p != nil {
				attrs = append(attrs, slog.String("principal", p.ID), slog.String("role", string(p.Role)))
			}
			g.Logger.Warn("rbac denied", attrs...)
		}
		if g.OnDeny != nil {
			g.OnDeny(req.Level)
		}
		httpx.RespondError(w, err)
		return
	}
	next.ServeHTTP(w, r)
}
