package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dhriti/dhriti-backend/internal/fields"
	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/platform/identity"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]json.RawMessage, error)
	Update(ctx context.Context, id string, values map[string]any) error
	Delete(ctx context.Context, id string) error
}

// IdentityPort is the identity admin API used for accounts.
type IdentityPort interface {
	CreateUser(ctx context.Context, params identity.CreateUserParams) (*identity.User, error)
	UpdateUserMetadata(ctx context.Context, id string, metadata map[string]any) (*identity.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	identity IdentityPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, identity IdentityPort) *Service {
	return &Service{repo: repo, identity: identity}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]json.RawMessage, error) {
	return s.repo.List(ctx)
}

// CreateUser registers an identity with its profile carried as metadata.
func (s *Service) CreateUser(ctx context.Context, in CreateInput) (*CreateResult, error) {
	role := rbac.ParseRole(in.Role)
	if !role.Valid() {
		return nil, httpx.Validation("Invalid role")
	}
	user, err := s.identity.CreateUser(ctx, identity.CreateUserParams{
		Email:        in.Email,
		Password:     in.Password,
		EmailConfirm: true,
		UserMetadata: in.metadata(string(role)),
	})
	if err != nil {
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) {
			return nil, httpx.Validation("%s", apiErr.Message)
		}
		return nil, httpx.Upstream(err)
	}
	return &CreateResult{Success: true, UserID: user.ID}, nil
}

// UpdateUser applies a profile update. A role change is mirrored into the
// identity metadata so newly issued tokens carry it.
func (s *Service) UpdateUser(ctx context.Context, id string, body map[string]any) error {
	values, err := fields.Users.Filter(body)
	if err != nil {
		return err
	}
	var role rbac.Role
	if raw, ok := values["role"]; ok {
		str, _ := raw.(string)
		role = rbac.ParseRole(str)
		if !role.Valid() {
			return httpx.Validation("Invalid role")
		}
		values["role"] = string(role)
	}

	if err := s.repo.Update(ctx, id, values); err != nil {
		return err
	}
	if role != rbac.RoleUnknown {
		if _, err := s.identity.UpdateUserMetadata(ctx, id, map[string]any{"role": string(role)}); err != nil {
			return httpx.Upstream(fmt.Errorf("sync role to identity: %w", err))
		}
	}
	return nil
}

// DeleteUser removes the identity and then the profile row. An identity
// that is already gone does not block the profile deletion.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.identity.DeleteUser(ctx, id); err != nil {
		var apiErr *identity.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			return httpx.Upstream(err)
		}
	}
	return s.repo.Delete(ctx, id)
}
