package timetable

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// Store defines the persistence used by the handler.
type Store interface {
	ListByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error)
	Replace(ctx context.Context, batchID string, slots []Slot) ([]json.RawMessage, error)
}

// Handler serves timetable endpoints.
type Handler struct {
	logger *slog.Logger
	store  Store
	gate   rbac.Gate
	now    func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store Store, gate rbac.Gate) *Handler {
	return &Handler{logger: logger, store: store, gate: gate, now: time.Now}
}

// MountRoutes registers timetable routes.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authed)
		r.With(h.gate.Require(rbac.LevelAuthenticated)).Get("/", h.list)
		r.With(h.gate.Require(rbac.LevelTeacher)).Put("/{batchId}", h.replace)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	batch := r.URL.Query().Get("batch")
	if batch == "" {
		httpx.Fail(w, http.StatusBadRequest, "batch is required")
		return
	}
	rows, err := h.store.ListByBatch(r.Context(), batch)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, rows)
}

type replaceBody struct {
	Items json.RawMessage `json:"items"`
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	var body replaceBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	raw := bytes.TrimSpace(body.Items)
	if len(raw) == 0 || raw[0] != '[' {
		httpx.Fail(w, http.StatusBadRequest, "items array is required")
		return
	}
	var items []ItemInput
	if err := json.Unmarshal(raw, &items); err != nil {
		httpx.RespondError(w, httpx.Validation("invalid timetable item: %v", err))
		return
	}

	batchID := chi.URLParam(r, "batchId")
	rows, err := h.store.Replace(r.Context(), batchID, BuildSlots(batchID, items, h.now()))
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, rows)
}
