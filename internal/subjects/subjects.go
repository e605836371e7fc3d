// Package subjects serves the subjects taught within a batch.
package subjects

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

// CreateInput is the body of POST /subjects.
type CreateInput struct {
	BatchID    string          `json:"batch_id" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	OrderIndex json.RawMessage `json:"order_index,omitempty"`
}

// Store defines the persistence used by the handler.
type Store interface {
	ListByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error)
	Create(ctx context.Context, in CreateInput) (json.RawMessage, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// ListByBatch returns the subjects of a batch in display order.
func (r *Repository) ListByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error) {
	return db.QueryJSON(ctx, r.q, `SELECT to_jsonb(s) FROM subjects s WHERE s.batch_id = $1 ORDER BY s.order_index ASC`, batchID)
}

// Create inserts a subject.
func (r *Repository) Create(ctx context.Context, in CreateInput) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "subjects", in)
}

// Handler serves subject endpoints.
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

// MountRoutes registers subject routes.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.With(authed, h.gate.Require(rbac.LevelTeacher)).Post("/", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	batch := r.URL.Query().Get("batch")
	if batch == "" {
		httpx.Fail(w, http.StatusBadRequest, "batch required")
		return
	}
	subjects, err := h.store.ListByBatch(r.Context(), batch)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, subjects)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "batch_id and name required")
		return
	}
	subject, err := h.store.Create(r.Context(), in)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, subject)
}
