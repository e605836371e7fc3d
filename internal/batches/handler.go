package batches

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
	List(ctx context.Context, streamID string) ([]json.RawMessage, error)
	Get(ctx context.Context, id string) (json.RawMessage, error)
	Create(ctx context.Context, in CreateInput) (json.RawMessage, error)
	Update(ctx context.Context, id string, values map[string]any) (json.RawMessage, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves batch endpoints.
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

// MountRoutes registers batch routes.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(authed, h.gate.Require(rbac.LevelAdmin))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	batches, err := h.store.List(r.Context(), r.URL.Query().Get("stream"))
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, ListResult{Count: len(batches), Batches: batches})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	batch, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, batch)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Batch ID and title are required")
		return
	}
	batch, err := h.store.Create(r.Context(), in)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, batch)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	values, err := fields.Batches.Filter(body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	batch, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), values)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, batch)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, httpx.Success{Success: true})
}
