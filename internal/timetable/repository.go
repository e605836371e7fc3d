package timetable

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhriti/dhriti-backend/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByBatch returns a batch's slots in chronological order.
func (r *Repository) ListByBatch(ctx context.Context, batchID string) ([]json.RawMessage, error) {
	const query = `SELECT to_jsonb(t) FROM timetable t WHERE t.batch_id = $1 ORDER BY t.date ASC, t.start_time ASC`
	return db.QueryJSON(ctx, r.pool, query, batchID)
}

// Replace swaps every slot of the batch for slots in one transaction, so
// readers never observe an empty timetable.
func (r *Repository) Replace(ctx context.Context, batchID string, slots []Slot) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM timetable WHERE batch_id = $1`, batchID); err != nil {
			return db.Classify(err)
		}
		if len(slots) == 0 {
			rows = []json.RawMessage{}
			return nil
		}
		var err error
		rows, err = db.InsertMany(ctx, tx, "timetable", Columns, slots)
		return err
	})
	if err != nil {
		return nil, db.Classify(err)
	}
	return rows, nil
}
