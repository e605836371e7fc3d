package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

type stubVerifier struct {
	principal *rbac.Principal
	err       error
	calls     int
}

func (s *stubVerifier) Verify(context.Context, string) (*rbac.Principal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := *s.principal
	return &p, nil
}

type stubRoles struct {
	role rbac.Role
	err  error
}

func (s stubRoles) ResolveRole(context.Context, string) (rbac.Role, error) {
	return s.role, s.err
}

func captured() (http.Handler, func() *rbac.Principal) {
	var got *rbac.Principal
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = rbac.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, func() *rbac.Principal { return got }
}

func TestMiddlewareMissingToken(t *testing.T) {
	auth := NewAuthenticator(&stubVerifier{}, nil, nil)
	rr := httptest.NewRecorder()
	auth.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Missing token"}`, rr.Body.String())
}

func TestMiddlewareInvalidToken(t *testing.T) {
	auth := NewAuthenticator(&stubVerifier{err: httpx.ErrUnauthorized}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rr := httptest.NewRecorder()
	auth.Middleware(http.NotFoundHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, rr.Body.String())
}

func TestMiddlewareAttachesPrincipal(t *testing.T) {
	verifier := &stubVerifier{principal: &rbac.Principal{ID: "u1", Role: rbac.RoleTeacher}}
	auth := NewAuthenticator(verifier, nil, nil)
	next, got := captured()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer good")
	rr := httptest.NewRecorder()
	auth.Middleware(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got())
	assert.Equal(t, rbac.RoleTeacher, got().Role)
}

func TestMiddlewareVerifiesEveryRequest(t *testing.T) {
	verifier := &stubVerifier{principal: &rbac.Principal{ID: "u1", Role: rbac.RoleStudent}}
	auth := NewAuthenticator(verifier, nil, nil)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		auth.Middleware(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 3, verifier.calls)
}

func TestMiddlewareProfileRoleOverridesToken(t *testing.T) {
	metadata := map[string]any{"role": "ADMIN", "first_name": "Asha"}
	verifier := &stubVerifier{principal: &rbac.Principal{ID: "u1", Role: rbac.RoleAdmin, Metadata: metadata}}
	auth := NewAuthenticator(verifier, stubRoles{role: rbac.RoleStudent}, nil)
	next, got := captured()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	auth.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got())
	assert.Equal(t, rbac.RoleStudent, got().Role)
	assert.Equal(t, "STUDENT", got().Metadata["role"])
	assert.Equal(t, "Asha", got().Metadata["first_name"])
	assert.Equal(t, "ADMIN", metadata["role"])
}

func TestMiddlewareProfileLookupFailure(t *testing.T) {
	verifier := &stubVerifier{principal: &rbac.Principal{ID: "u1"}}
	auth := NewAuthenticator(verifier, stubRoles{err: errors.New("db down")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	auth.Middleware(http.NotFoundHandler()).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		token  string
		ok     bool
	}{
		"standard":     {"Bearer abc", "abc", true},
		"lowercase":    {"bearer abc", "abc", true},
		"raw token":    {"abc", "abc", true},
		"empty":        {"", "", false},
		"prefix only":  {"Bearer ", "", false},
		"extra spaces": {"Bearer   abc  ", "abc", true},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		token, ok := BearerToken(req)
		assert.Equal(t, tc.ok, ok, name)
		assert.Equal(t, tc.token, token, name)
	}
}
