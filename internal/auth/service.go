package auth

import (
	"context"
	"errors"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/platform/identity"
)

// PasswordSignIn is the identity call used by Login.
type PasswordSignIn interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
}

// Service wraps authentication business rules.
type Service struct {
	identity PasswordSignIn
	repo     Repository
}

// NewService constructs a new Service.
func NewService(identity PasswordSignIn, repo Repository) *Service {
	return &Service{identity: identity, repo: repo}
}

// Login authenticates with the identity service, then reads the
// application role from the users table.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	session, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) {
			return nil, httpx.Errorf(httpx.ErrUnauthorized, "Invalid email or password")
		}
		return nil, &httpx.Error{Kind: httpx.ErrUpstream, Message: "Login failed", Details: err.Error()}
	}
	if session == nil || session.User == nil || session.AccessToken == "" {
		return nil, httpx.Errorf(httpx.ErrUnauthorized, "Invalid email or password")
	}

	profile, err := s.repo.FindProfile(ctx, session.User.ID)
	if err != nil || profile == nil {
		return nil, httpx.Errorf(httpx.ErrForbidden, "User role not assigned. Contact admin.")
	}

	return &LoginResult{
		Token: session.AccessToken,
		User: LoginUser{
			ID:        session.User.ID,
			Email:     session.User.Email,
			Role:      profile.Role,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
		},
	}, nil
}
