// Package chapters serves the chapters of a subject within a batch.
package chapters

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dhriti/dhriti-backend/internal/fields"
	"github.com/dhriti/dhriti-backend/internal/platform/db"
	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// CreateInput is the body of POST /chapters.
type CreateInput struct {
	BatchID       string          `json:"batch_id" validate:"required"`
	SubjectID     string          `json:"subject_id" validate:"required"`
	Title         string          `json:"title" validate:"required"`
	ChapterNumber json.RawMessage `json:"chapter_number,omitempty"`
}

// Store defines the persistence used by the handler.
type Store interface {
	List(ctx context.Context, batchID, subjectID string) ([]json.RawMessage, error)
	Create(ctx context.Context, in CreateInput) (json.RawMessage, error)
	Update(ctx context.Context, id string, values map[string]any) (json.RawMessage, error)
	Delete(ctx context.Context, id string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// List returns the chapters of a subject ordered by chapter number.
func (r *Repository) List(ctx context.Context, batchID, subjectID string) ([]json.RawMessage, error) {
	const query = `SELECT to_jsonb(c) FROM chapters c
WHERE c.batch_id = $1 AND c.subject_id = $2
ORDER BY c.chapter_number ASC`
	return db.QueryJSON(ctx, r.q, query, batchID, subjectID)
}

// Create inserts a chapter.
func (r *Repository) Create(ctx context.Context, in CreateInput) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "chapters", in)
}

// Update applies schema-filtered values to a chapter.
func (r *Repository) Update(ctx context.Context, id string, values map[string]any) (json.RawMessage, error) {
	row, err := db.Update(ctx, r.q, "chapters", id, values)
	if err != nil {
		return nil, db.NotFoundAs(err, "Chapter not found")
	}
	return row, nil
}

// Delete removes a chapter.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id); err != nil {
		return db.Classify(err)
	}
	return nil
}

// Handler serves chapter endpoints.
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

// MountRoutes registers chapter routes.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(authed, h.gate.Require(rbac.LevelTeacher))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	batch, subject := r.URL.Query().Get("batch"), r.URL.Query().Get("subject")
	if batch == "" || subject == "" {
		httpx.Fail(w, http.StatusBadRequest, "batch and subject are required")
		return
	}
	chapters, err := h.store.List(r.Context(), batch, subject)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, chapters)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "batch_id, subject_id and title are required")
		return
	}
	chapter, err := h.store.Create(r.Context(), in)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, chapter)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	values, err := fields.Chapters.Filter(body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	chapter, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), values)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, chapter)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, httpx.Success{Success: true})
}
