package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/platform/storage"
	"github.com/dhriti/dhriti-backend/internal/platform/upload"
)

// RepositoryPort defines data access methods for resources.
type RepositoryPort interface {
	List(ctx context.Context, f Filter) ([]json.RawMessage, error)
	Create(ctx context.Context, rec Record) (json.RawMessage, error)
	FileURL(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStore is the object storage used for resource files.
type ObjectStore interface {
	Upload(ctx context.Context, obj storage.Object) (string, error)
	Remove(ctx context.Context, bucket, key string) error
}

// Service coordinates file storage and resource rows.
type Service struct {
	repo    RepositoryPort
	objects ObjectStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, objects ObjectStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, objects: objects, logger: logger, now: time.Now}
}

// List returns the resources matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]json.RawMessage, error) {
	return s.repo.List(ctx, f)
}

// Upload stores the file under {batch}/{subject}/ and records its metadata.
func (s *Service) Upload(ctx context.Context, in UploadInput, file *upload.File) (json.RawMessage, error) {
	key := storage.ObjectKey(s.now(), file.Filename, in.BatchID, in.SubjectID)
	publicURL, err := s.objects.Upload(ctx, storage.Object{
		Bucket:      Bucket,
		Key:         key,
		ContentType: upload.ContentTypePDF,
		Size:        file.Size,
		Body:        bytes.NewReader(file.Data),
	})
	if err != nil {
		s.logger.Error("resource upload failed", slog.Any("error", err), slog.String("key", key))
		return nil, httpx.Errorf(httpx.ErrUpstream, "Upload failed")
	}

	rec := Record{
		BatchID:    in.BatchID,
		SubjectID:  in.SubjectID,
		Title:      in.Title,
		Type:       in.Type,
		FileURL:    publicURL,
		FileSize:   file.Size,
		UploadedBy: in.UploadedBy,
	}
	if in.ChapterID != "" {
		rec.ChapterID = &in.ChapterID
	}
	row, err := s.repo.Create(ctx, rec)
	if err != nil {
		s.logger.Error("resource insert failed", slog.Any("error", err), slog.String("key", key))
		return nil, httpx.Errorf(httpx.ErrUpstream, "Upload failed")
	}
	return row, nil
}

// Delete removes the stored file, then the row. A file that cannot be
// removed is logged and does not block the row deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	fileURL, err := s.repo.FileURL(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return httpx.Errorf(httpx.ErrNotFound, "File not found")
		}
		return err
	}

	if key, err := storage.KeyFromURL(fileURL, Bucket); err != nil {
		s.logger.Warn("resource url not in bucket", slog.String("id", id), slog.String("url", fileURL))
	} else if err := s.objects.Remove(ctx, Bucket, key); err != nil {
		s.logger.Warn("resource file removal failed", slog.Any("error", err), slog.String("key", key))
	}

	return s.repo.Delete(ctx, id)
}
