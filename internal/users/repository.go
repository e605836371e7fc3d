package users

import (
	"context"
	"encoding/json"

	"github.com/dhriti/dhriti-backend/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence of user profiles.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// List returns all profiles, newest first.
func (r *Repository) List(ctx context.Context) ([]json.RawMessage, error) {
	return db.QueryJSON(ctx, r.q, `SELECT to_jsonb(u) FROM users u ORDER BY u.created_at DESC`)
}

// Update applies schema-filtered values to a profile.
func (r *Repository) Update(ctx context.Context, id string, values map[string]any) error {
	if _, err := db.Update(ctx, r.q, "users", id, values); err != nil {
		return db.NotFoundAs(err, "User not found")
	}
	return nil
}

// Delete removes a profile.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return db.Classify(err)
	}
	return nil
}
