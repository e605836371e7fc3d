// Package freebies serves free study material grouped by subject and type.
package freebies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dhriti/dhriti-backend/internal/platform/db"
	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/platform/storage"
	"github.com/dhriti/dhriti-backend/internal/platform/upload"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// Bucket holds freebie files.
const Bucket = "freebies"

// Record is the row stored for a freebie.
type Record struct {
	Subject string `json:"subject" validate:"required"`
	Type    string `json:"type" validate:"required"`
	Title   string `json:"title" validate:"required"`
	FileURL string `json:"file_url"`
}

// UploadResult is returned by POST /freebies/upload.
type UploadResult struct {
	Success bool            `json:"success"`
	File    json.RawMessage `json:"file"`
}

// Store defines the persistence used by the handler.
type Store interface {
	List(ctx context.Context, subject, kind string) ([]json.RawMessage, error)
	Create(ctx context.Context, rec Record) (json.RawMessage, error)
}

// ObjectStore is the object storage used for freebie files.
type ObjectStore interface {
	Upload(ctx context.Context, obj storage.Object) (string, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// List returns freebies newest first; empty filters are ignored.
func (r *Repository) List(ctx context.Context, subject, kind string) ([]json.RawMessage, error) {
	const query = `SELECT to_jsonb(f) FROM freebies f
WHERE ($1 = '' OR f.subject = $1) AND ($2 = '' OR f.type = $2)
ORDER BY f.created_at DESC`
	return db.QueryJSON(ctx, r.q, query, subject, kind)
}

// Create inserts a freebie row.
func (r *Repository) Create(ctx context.Context, rec Record) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "freebies", rec)
}

// Handler serves freebie endpoints.
type Handler struct {
	logger    *slog.Logger
	store     Store
	objects   ObjectStore
	gate      rbac.Gate
	maxBytes  int64
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store Store, objects ObjectStore, gate rbac.Gate, maxBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		store:     store,
		objects:   objects,
		gate:      gate,
		maxBytes:  maxBytes,
		validator: validator.New(),
		now:       time.Now,
	}
}

// MountRoutes registers freebie routes.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.With(authed, h.gate.Require(rbac.LevelTeacher)).Post("/upload", h.upload)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	freebies, err := h.store.List(r.Context(), q.Get("subject"), q.Get("type"))
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, freebies)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	file, err := upload.ReadPDF(w, r, "pdf", h.maxBytes)
	if err != nil && !errors.Is(err, upload.ErrNoFile) {
		httpx.RespondError(w, err)
		return
	}
	rec := Record{Subject: r.FormValue("subject"), Type: r.FormValue("type"), Title: r.FormValue("title")}
	if file == nil || h.validator.Struct(rec) != nil {
		httpx.Fail(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	key := storage.ObjectKey(h.now(), file.Filename, rec.Subject, rec.Type)
	rec.FileURL, err = h.objects.Upload(r.Context(), storage.Object{
		Bucket:      Bucket,
		Key:         key,
		ContentType: upload.ContentTypePDF,
		Size:        file.Size,
		Body:        bytes.NewReader(file.Data),
	})
	if err != nil {
		h.uploadFailed(w, err, key)
		return
	}

	row, err := h.store.Create(r.Context(), rec)
	if err != nil {
		h.uploadFailed(w, err, key)
		return
	}
	httpx.OK(w, UploadResult{Success: true, File: row})
}

func (h *Handler) uploadFailed(w http.ResponseWriter, err error, key string) {
	h.logger.Error("freebie upload failed", slog.Any("error", err), slog.String("key", key))
	httpx.JSON(w, http.StatusInternalServerError, httpx.ErrorBody{Error: "Upload failed", Details: err.Error()})
}
