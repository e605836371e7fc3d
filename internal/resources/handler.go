package resources

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/platform/upload"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// Handler serves resource endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Gate
	maxBytes  int64
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Gate, maxBytes int64) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, maxBytes: maxBytes, validator: validator.New()}
}

// MountRoutes registers resource routes.
func (h *Handler) MountRoutes(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(authed, h.gate.Require(rbac.LevelTeacher))
		r.Post("/upload", h.upload)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{BatchID: q.Get("batch"), SubjectID: q.Get("subject"), ChapterID: q.Get("chapter")}
	if f.BatchID == "" || f.SubjectID == "" {
		httpx.Fail(w, http.StatusBadRequest, "batch and subject required")
		return
	}
	resources, err := h.service.List(r.Context(), f)
	if err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, resources)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	file, err := upload.ReadPDF(w, r, "pdf", h.maxBytes)
	if err != nil && !errors.Is(err, upload.ErrNoFile) {
		httpx.RespondError(w, err)
		return
	}
	in := UploadInput{
		BatchID:   r.FormValue("batch_id"),
		SubjectID: r.FormValue("subject_id"),
		ChapterID: r.FormValue("chapter_id"),
		Title:     r.FormValue("title"),
		Type:      r.FormValue("type"),
	}
	if file == nil || h.validator.Struct(in) != nil {
		httpx.Fail(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if p := rbac.PrincipalFromContext(r.Context()); p != nil {
		in.UploadedBy = p.ID
	}

	row, err := h.service.Upload(r.Context(), in, file)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, row)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondErrorLogged(w, r, h.logger, err)
		return
	}
	httpx.OK(w, httpx.Success{Success: true})
}
