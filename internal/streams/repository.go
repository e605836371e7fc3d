package streams

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

// List returns all streams, oldest first.
func (r *Repository) List(ctx context.Context) ([]json.RawMessage, error) {
	return db.QueryJSON(ctx, r.q, `SELECT to_jsonb(s) FROM streams s ORDER BY s.created_at ASC`)
}

// Create inserts a stream.
func (r *Repository) Create(ctx context.Context, in CreateInput) (json.RawMessage, error) {
	return db.Insert(ctx, r.q, "streams", in)
}
