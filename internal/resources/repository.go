package resources

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dhriti/dhriti-backend/internal/platform/db"
	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// List returns resources newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]json.RawMessage, error) {
	query := `SELECT to_jsonb(r) FROM resources r WHERE r.batch_id = $1 AND r.subject_id = $2`
	args := []any{f.BatchID, f.SubjectID}
	if f.ChapterID != "" {
		query += ` AND r.chapter_id = $3`
		args = append(args, f.ChapterID)
	}
	return db.QueryJSON(ctx, r.q, query+` ORDER BY r.created_at DESC`, args...)
}

// Create inserts the metadata row of an uploaded file.
func (r *Repository) Create(ctx context.Context, rec Record) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "resources", rec)
}

// FileURL returns the stored public URL of a resource.
func (r *Repository) FileURL(ctx context.Context, id string) (string, error) {
	var fileURL *string
	err := r.q.QueryRow(ctx, `SELECT file_url FROM resources WHERE id = $1`, id).Scan(&fileURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", httpx.ErrNotFound
		}
		return "", db.Classify(err)
	}
	if fileURL == nil {
		return "", nil
	}
	return *fileURL, nil
}

// Delete removes a resource row.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id); err != nil {
		return db.Classify(err)
	}
	return nil
}
