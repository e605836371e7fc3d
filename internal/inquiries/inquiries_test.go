package inquiries

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhriti/dhriti-backend/internal/rbac"
	"github.com/dhriti/dhriti-backend/internal/testing/authtest"
)

type stubStore struct{ submitted *SubmitInput }

func (s *stubStore) List(context.Context) ([]json.RawMessage, error) {
	return []json.RawMessage{json.RawMessage(`{"id":1}`)}, nil
}

func (s *stubStore) Create(_ context.Context, in SubmitInput) (json.RawMessage, error) {
	s.submitted = &in
	return json.RawMessage(`{"id":1,"name":"` + in.Name + `"}`), nil
}

func newRouter(store Store) http.Handler {
	r := chi.NewRouter()
	NewHandler(nil, store, rbac.Gate{}).MountRoutes(r, authtest.Middleware)
	return r
}

func TestSubmitIsPublic(t *testing.T) {
	store := &stubStore{}
	rr := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ravi","phone":"98765","batch_interest":"c1"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1,"name":"Ravi"}}`, rr.Body.String())
	assert.JSONEq(t, `"c1"`, string(store.submitted.BatchInterest))
	assert.Nil(t, store.submitted.Email)
}

func TestSubmitRequiresNameAndPhone(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(&stubStore{}).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ravi"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Name and phone are required"}`, rr.Body.String())
}

func TestListIsAdminOnly(t *testing.T) {
	h := newRouter(&stubStore{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authtest.As(httptest.NewRequest(http.MethodGet, "/", nil), "t1", rbac.RoleTeacher))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authtest.As(httptest.NewRequest(http.MethodGet, "/", nil), "a1", rbac.RoleAdmin))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":1}]`, rr.Body.String())
}
