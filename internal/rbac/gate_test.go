package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

var allLevels = []Level{LevelNone, LevelAuthenticated, LevelSelf, LevelTeacher, LevelAdmin}

func TestAdminSatisfiesEveryLevel(t *testing.T) {
	admin := &Principal{ID: "a1", Role: RoleAdmin}
	for _, level := range allLevels {
		assert.NoError(t, Check(admin, Requirement{Level: level, Owner: "someone-else"}), level.String())
	}
}

func TestStudentDeniedTeacherAndAdmin(t *testing.T) {
	student := &Principal{ID: "s1", Role: RoleStudent}
	for _, level := range []Level{LevelTeacher, LevelAdmin} {
		err := Check(student, Requirement{Level: level})
		assert.ErrorIs(t, err, httpx.ErrForbidden, level.String())
	}
}

func TestNoPrincipalDeniedAboveNone(t *testing.T) {
	assert.NoError(t, Check(nil, Requirement{Level: LevelNone}))
	for _, level := range allLevels[1:] {
		assert.ErrorIs(t, Check(nil, Requirement{Level: level, Owner: ""}), httpx.ErrForbidden, level.String())
	}
}

func TestSelfCheckIgnoresRole(t *testing.T) {
	for _, role := range []Role{RoleStudent, RoleTeacher, RoleUnknown} {
		p := &Principal{ID: "u1", Role: role}
		assert.NoError(t, Check(p, Requirement{Level: LevelSelf, Owner: "u1"}), string(role))
		assert.ErrorIs(t, Check(p, Requirement{Level: LevelSelf, Owner: "u2"}), httpx.ErrForbidden, string(role))
	}
}

func TestSelfCheckEmptyOwnerNeverMatches(t *testing.T) {
	p := &Principal{ID: "", Role: RoleStudent}
	assert.ErrorIs(t, Check(p, Requirement{Level: LevelSelf}), httpx.ErrForbidden)
}

func TestConcreteScenarios(t *testing.T) {
	teacher := &Principal{ID: "t1", Role: RoleTeacher}
	student := &Principal{ID: "u1", Role: RoleStudent}

	err := Check(teacher, Requirement{Level: LevelAdmin})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Equal(t, "Admin access required", err.Error())

	assert.NoError(t, Check(teacher, Requirement{Level: LevelTeacher}))
	assert.NoError(t, Check(student, Requirement{Level: LevelSelf, Owner: "u1"}))
	assert.ErrorIs(t, Check(student, Requirement{Level: LevelSelf, Owner: "u2"}), httpx.ErrForbidden)
}

func TestUnknownRoleOnlyAuthenticated(t *testing.T) {
	p := &Principal{ID: "x", Role: ParseRole("superuser")}
	assert.NoError(t, Check(p, Requirement{Level: LevelAuthenticated}))
	assert.Error(t, Check(p, Requirement{Level: LevelTeacher}))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleTeacher, ParseRole(" teacher "))
	assert.Equal(t, RoleAdmin, ParseRole("ADMIN"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
	assert.False(t, RoleUnknown.Valid())
}

func TestGateMiddleware(t *testing.T) {
	gate := Gate{}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name      string
		principal *Principal
		want      int
	}{
		{"teacher allowed", &Principal{ID: "t", Role: RoleTeacher}, http.StatusNoContent},
		{"student denied", &Principal{ID: "s", Role: RoleStudent}, http.StatusForbidden},
		{"anonymous denied", nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chapters", nil)
			if tc.principal != nil {
				req = req.WithContext(ContextWithPrincipal(req.Context(), tc.principal))
			}
			rr := httptest.NewRecorder()
			gate.Require(LevelTeacher)(ok).ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestRequireSelfReadsURLParam(t *testing.T) {
	r := chi.NewRouter()
	r.With(Gate{}.RequireSelf("userId")).Get("/enrollments/{userId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	student := &Principal{ID: "u1", Role: RoleStudent}
	for path, want := range map[string]int{"/enrollments/u1": http.StatusOK, "/enrollments/u2": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(ContextWithPrincipal(req.Context(), student))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, path)
	}
}

func TestGateReportsDenials(t *testing.T) {
	var levels []Level
	gate := Gate{OnDeny: func(l Level) { levels = append(levels, l) }}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodDelete, "/users/u1", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), &Principal{ID: "t", Role: RoleTeacher}))
	gate.Require(LevelAdmin)(ok).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodDelete, "/users/u1", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), &Principal{ID: "a", Role: RoleAdmin}))
	gate.Require(LevelAdmin)(ok).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []Level{LevelAdmin}, levels)
}
