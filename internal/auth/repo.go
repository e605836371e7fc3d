package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// Repository defines the profile lookups the auth module needs.
type Repository interface {
	FindProfile(ctx context.Context, userID string) (*Profile, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindProfile fetches the role and names of a user.
func (r *PGRepository) FindProfile(ctx context.Context, userID string) (*Profile, error) {
	const query = `SELECT id::text, COALESCE(role::text, ''), first_name, last_name FROM users WHERE id = $1`
	var p Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.ID, &p.Role, &p.FirstName, &p.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ProfileRoles resolves roles from the users table on every request.
type ProfileRoles struct {
	Repo Repository
}

// ResolveRole returns the authoritative role of a user.
func (p ProfileRoles) ResolveRole(ctx context.Context, userID string) (rbac.Role, error) {
	profile, err := p.Repo.FindProfile(ctx, userID)
	if err != nil {
		return rbac.RoleUnknown, err
	}
	return rbac.ParseRole(profile.Role), nil
}

var _ Repository = (*PGRepository)(nil)
