// Package authtest provides request helpers for handler tests that sit
// behind the bearer middleware.
package authtest

import (
	"net/http"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
	_ "github.com/dhriti/dhriti-backend/internal/testing/guard"
)

// Header names read by Middleware.
const (
	UserHeader = "X-Test-User"
	RoleHeader = "X-Test-Role"
)

// Middleware stands in for the bearer middleware. It builds the principal
// from test headers and answers 401 when UserHeader is absent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(UserHeader)
		if id == "" {
			httpx.Fail(w, http.StatusUnauthorized, "Missing token")
			return
		}
		p := &rbac.Principal{ID: id, Role: rbac.ParseRole(r.Header.Get(RoleHeader))}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), p)))
	})
}

// As marks req as sent by the given user and role.
func As(req *http.Request, id string, role rbac.Role) *http.Request {
	req.Header.Set(UserHeader, id)
	req.Header.Set(RoleHeader, string(role))
	return req
}
