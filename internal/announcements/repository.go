package announcements

import (
	"context"
	"encoding/json"

	"github.com/dhriti/dhriti-backend/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// ListByBatch returns a batch's announcements newest first.
func (r *Repository) ListByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error) {
	return db.QueryJSON(ctx, r.q, `SELECT to_jsonb(a) FROM announcements a WHERE a.batch_id = $1 ORDER BY a.created_at DESC`, batchID)
}

// Create inserts an announcement.
func (r *Repository) Create(ctx context.Context, rec Record) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "announcements", rec)
}

// Update applies schema-filtered values to an announcement.
func (r *Repository) Update(ctx context.Context, id string, values map[string]any) (json.RawMessage, error) {
	row, err := db.Update(ctx, r.q, "announcements", id, values)
	if err != nil {
		return nil, db.NotFoundAs(err, "Announcement not found")
	}
	return row, nil
}

// Delete removes an announcement.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id); err != nil {
		return db.Classify(err)
	}
	return nil
}
