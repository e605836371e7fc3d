// Package inquiries records admission inquiries from the public site.
package inquiries

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

// SubmitInput is the body of POST /inquiries.
type SubmitInput struct {
	Name          string          `json:"name" validate:"required"`
	Phone         string          `json:"phone" validate:"required"`
	Email         json.RawMessage `json:"email,omitempty"`
	Message       json.RawMessage `json:"message,omitempty"`
	BatchInterest json.RawMessage `json:"batch_interest,omitempty"`
}

// SubmitResult is returned after an inquiry is stored.
type SubmitResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Store defines the persistence used by the handler.
type Store interface {
	List(ctx context.Context) ([]json.RawMessage, error)
	Create(ctx context.Context, in SubmitInput) (json.RawMessage, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// List returns inquiries newest first.
func (r *Repository) List(ctx context.Context) ([]json.RawMessage, error) {
	return db.QueryJSON(ctx, r.q, `SELECT to_jsonb(i) FROM inquiries i ORDER BY i.created_at DESC`)
}

// Create stores an inquiry.
func (r *Repository) Create(ctx context.Context, in SubmitInput) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "inquiries", in)
}

// Handler serves inquiry endpoints.
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

// MountRoutes registers inquiry routes.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Post("/", h.submit)
	r.With(authed, h.gate.Require(rbac.LevelAdmin)).Get("/", h.list)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Name and phone are required")
		return
	}
	row, err := h.store.Create(r.Context(), in)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, SubmitResult{Success: true, Data: row})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.List(r.Context())
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, rows)
}
