package batches

import (
	"context"
	"encoding/json"

	"github.com/dhriti/dhriti-backend/internal/platform/db"
)

// Each batch carries its stream title both nested and flattened.
const selectBatch = `SELECT to_jsonb(b) || jsonb_build_object(
	'streams', CASE WHEN s.id IS NULL THEN NULL ELSE jsonb_build_object('title', s.title) END,
	'stream_name', s.title)
FROM batches b
LEFT JOIN streams s ON s.id = b.stream_id`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// List returns batches oldest first, optionally restricted to one stream.
func (r *Repository) List(ctx context.Context, streamID string) ([]json.RawMessage, error) {
	if streamID == "" {
		return db.QueryJSON(ctx, r.q, selectBatch+` ORDER BY b.created_at ASC`)
	}
	return db.QueryJSON(ctx, r.q, selectBatch+` WHERE b.stream_id = $1 ORDER BY b.created_at ASC`, streamID)
}

// Get returns one batch.
func (r *Repository) Get(ctx context.Context, id string) (json.RawMessage, error) {
	row, err := db.QueryJSONRow(ctx, r.q, selectBatch+` WHERE b.id = $1`, id)
	if err != nil {
		return nil, db.NotFoundAs(err, "Batch not found")
	}
	return row, nil
}

// Create inserts a batch.
func (r *Repository) Create(ctx context.Context, in CreateInput) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "batches", in)
}

// Update applies schema-filtered values to a batch.
func (r *Repository) Update(ctx context.Context, id string, values map[string]any) (json.RawMessage, error) {
	row, err := db.Update(ctx, r.q, "batches", id, values)
	if err != nil {
		return nil, db.NotFoundAs(err, "Batch not found")
	}
	return row, nil
}

// Delete removes a batch.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id); err != nil {
		return db.Classify(err)
	}
	return nil
}
