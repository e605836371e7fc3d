// Package enrollments links users to the batches they attend.
package enrollments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dhriti/dhriti-backend/internal/platform/db"
	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// Membership names one user and one batch.
type Membership struct {
	UserID  string `json:"user_id" validate:"required"`
	BatchID string `json:"batch_id" validate:"required"`
}

// EnrollResult is returned by POST /enrollments.
type EnrollResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Store defines the persistence used by the handler.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]json.RawMessage, error)
	ListUsersByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error)
	Enroll(ctx context.Context, m Membership) (json.RawMessage, error)
	Unenroll(ctx context.Context, m Membership) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// ListByUser returns the batches a user is enrolled in.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]json.RawMessage, error) {
	const query = `SELECT jsonb_build_object('batch_id', e.batch_id, 'enrolled_at', e.enrolled_at)
FROM enrollments e WHERE e.user_id = $1`
	return db.QueryJSON(ctx, r.q, query, userID)
}

// ListUsersByBatch returns the profiles enrolled in a batch, each with its
// enrolment time.
func (r *Repository) ListUsersByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error) {
	const query = `SELECT COALESCE(to_jsonb(u), '{}'::jsonb) || jsonb_build_object('enrolled_at', e.enrolled_at)
FROM enrollments e
LEFT JOIN users u ON u.id = e.user_id
WHERE e.batch_id = $1`
	return db.QueryJSON(ctx, r.q, query, batchID)
}

// Enroll adds a user to a batch.
func (r *Repository) Enroll(ctx context.Context, m Membership) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "enrollments", m)
}

// Unenroll removes a user from a batch.
func (r *Repository) Unenroll(ctx context.Context, m Membership) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM enrollments WHERE user_id = $1 AND batch_id = $2`, m.UserID, m.BatchID); err != nil {
		return db.Classify(err)
	}
	return nil
}

// Handler serves enrollment endpoints.
type Handler struct {
	logger    *slog.Logger
	store     Store
	gate      rbac.Gate
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store Store, gate rbac.Gate) *Handler {
	return &Handler{logger: logger, store: store, gate: gate, validator: validator.New()}
}

// MountRoutes registers enrollment routes; all of them need a signed-in user.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authed)
		r.With(h.gate.Require(rbac.LevelTeacher)).Get("/batch/{batchId}", h.listByBatch)
		r.With(h.gate.RequireSelf("userId")).Get("/{userId}", h.listByUser)
		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(rbac.LevelAdmin))
			r.Post("/", h.enroll)
			r.Delete("/", h.unenroll)
		})
	})
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, rows)
}

func (h *Handler) listByBatch(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListUsersByBatch(r.Context(), chi.URLParam(r, "batchId"))
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, rows)
}

func (h *Handler) decodeMembership(w http.ResponseWriter, r *http.Request) (Membership, bool) {
	var m Membership
	if err := httpx.DecodeJSON(r, &m); err != nil {
		httpx.RespondError(w, err)
		return m, false
	}
	if err := h.validator.Struct(m); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "user_id and batch_id are required")
		return m, false
	}
	return m, true
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decodeMembership(w, r)
	if !ok {
		return
	}
	row, err := h.store.Enroll(r.Context(), m)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, EnrollResult{Success: true, Data: row})
}

func (h *Handler) unenroll(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decodeMembership(w, r)
	if !ok {
		return
	}
	if err := h.store.Unenroll(r.Context(), m); err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, httpx.Success{Success: true})
}
