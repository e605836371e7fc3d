package announcements

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dhriti/dhriti-backend/internal/fields"
	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// Store defines the persistence used by the handler.
type Store interface {
	ListByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error)
	Create(ctx context.Context, rec Record) (json.RawMessage, error)
	Update(ctx context.Context, id string, values map[string]any) (json.RawMessage, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves announcement endpoints.
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

// MountRoutes registers announcement routes. Every route needs a
// signed-in user.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authed)
		r.With(h.gate.Require(rbac.LevelAuthenticated)).Get("/", h.list)
		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(rbac.LevelTeacher))
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	batch := r.URL.Query().Get("batch")
	if batch == "" {
		httpx.Fail(w, http.StatusBadRequest, "batch_id is required")
		return
	}
	rows, err := h.store.ListByBatch(r.Context(), batch)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, rows)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "batch_id, title and message are required")
		return
	}
	p := rbac.PrincipalFromContext(r.Context())
	row, err := h.store.Create(r.Context(), NewRecord(in, p.ID))
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, row)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	values, err := fields.Announcements.Filter(body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	row, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), values)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, row)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, httpx.Success{Success: true})
}
