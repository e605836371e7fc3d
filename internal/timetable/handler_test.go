package timetable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhriti/dhriti-backend/internal/rbac"
	"github.com/dhriti/dhriti-backend/internal/testing/authtest"
)

type stubStore struct {
	batch string
	slots []Slot
	err   error
}

func (s *stubStore) ListByBatch(_ context.Context, batchID string) ([]json.RawMessage, error) {
	s.batch = batchID
	return []json.RawMessage{}, nil
}

func (s *stubStore) Replace(_ context.Context, batchID string, slots []Slot) ([]json.RawMessage, error) {
	s.batch, s.slots = batchID, slots
	if s.err != nil {
		return nil, s.err
	}
	out := make([]json.RawMessage, len(slots))
	for i, slot := range slots {
		out[i], _ = json.Marshal(slot)
	}
	return out, nil
}

func newRouter(store Store) http.Handler {
	h := NewHandler(nil, store, rbac.Gate{})
	h.now = func() time.Time { return time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800)) }
	r := chi.NewRouter()
	h.MountRoutes(r, authtest.Middleware)
	return r
}

func put(h http.Handler, body string, role rbac.Role) *httptest.ResponseRecorder {
	req := authtest.As(httptest.NewRequest(http.MethodPut, "/c1", strings.NewReader(body)), "u1", role)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestBuildSlotsDefaultsDateToUTCToday(t *testing.T) {
	now := time.Date(2026, 3, 2, 1, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	slots := BuildSlots("c1", []ItemInput{{}, {Date: "2026-04-01"}}, now)
	require.Len(t, slots, 2)
	assert.Equal(t, "2026-03-01", slots[0].Date)
	assert.Equal(t, "2026-04-01", slots[1].Date)
	assert.Equal(t, "c1", slots[1].BatchID)
}

func TestReplaceTimetable(t *testing.T) {
	store := &stubStore{}
	body := `{"items":[{"start_time":"09:00","end_time":"10:00","subject":"Physics","batch_id":"ignored"}]}`
	rr := put(newRouter(store), body, rbac.RoleTeacher)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "c1", store.batch)
	require.Len(t, store.slots, 1)
	assert.Equal(t, "c1", store.slots[0].BatchID)
	assert.Equal(t, "2026-03-01", store.slots[0].Date)
	assert.JSONEq(t, `"Physics"`, string(store.slots[0].Subject))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	assert.Nil(t, rows[0]["topic"])
}

func TestReplaceRequiresItemsArray(t *testing.T) {
	h := newRouter(&stubStore{})
	for _, body := range []string{`{}`, `{"items":{"a":1}}`, `{"items":null}`} {
		rr := put(h, body, rbac.RoleTeacher)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.JSONEq(t, `{"error":"items array is required"}`, rr.Body.String())
	}
}

func TestReplaceWithEmptyItems(t *testing.T) {
	store := &stubStore{}
	rr := put(newRouter(store), `{"items":[]}`, rbac.RoleAdmin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Empty(t, store.slots)
}

func TestReplaceFailure(t *testing.T) {
	rr := put(newRouter(&stubStore{err: errors.New("tx aborted")}), `{"items":[]}`, rbac.RoleTeacher)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestReplaceRequiresTeacher(t *testing.T) {
	rr := put(newRouter(&stubStore{}), `{"items":[]}`, rbac.RoleStudent)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestListTimetable(t *testing.T) {
	store := &stubStore{}
	req := authtest.As(httptest.NewRequest(http.MethodGet, "/?batch=c1", nil), "s1", rbac.RoleStudent)
	rr := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "c1", store.batch)
}
