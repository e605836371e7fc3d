package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/platform/identity"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

// DefaultAudience is the audience GoTrue puts on user access tokens.
const DefaultAudience = "authenticated"

// Verifier exchanges a bearer token for a principal. Every failure wraps
// httpx.ErrUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, token string) (*rbac.Principal, error)
}

// UserLookup is the identity call the remote verifier depends on.
type UserLookup interface {
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
}

// RemoteVerifier asks the identity service about every token.
type RemoteVerifier struct {
	users UserLookup
}

// NewRemoteVerifier builds a verifier backed by the identity service.
func NewRemoteVerifier(users UserLookup) *RemoteVerifier {
	return &RemoteVerifier{users: users}
}

// Verify resolves the token with one identity call. An unreachable provider
// is reported the same way as a rejected token.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*rbac.Principal, error) {
	user, err := v.users.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, err)
	}
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: identity returned no user", httpx.ErrUnauthorized)
	}
	return &rbac.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     roleFromMetadata(user.UserMetadata),
		Metadata: user.UserMetadata,
	}, nil
}

// HS256Verifier validates tokens signed with the project's JWT secret.
type HS256Verifier struct {
	secret   []byte
	audience string
}

// NewHS256Verifier creates a verifier for HS256 tokens.
func NewHS256Verifier(secret, audience string) (*HS256Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if audience == "" {
		audience = DefaultAudience
	}
	return &HS256Verifier{secret: []byte(secret), audience: audience}, nil
}

// Verify checks signature, expiry and audience locally.
func (v *HS256Verifier) Verify(_ context.Context, token string) (*rbac.Principal, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: token verification failed: %v", httpx.ErrUnauthorized, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported claim type %T", httpx.ErrUnauthorized, tok.Claims)
	}
	return principalFromClaims(claims)
}

// JWKSVerifier validates asymmetric tokens against the project's JWKS.
type JWKSVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewJWKSVerifier builds a verifier from the JWKS URL and issuer.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string) *JWKSVerifier {
	if audience == "" {
		audience = DefaultAudience
	}
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	return &JWKSVerifier{verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
		ClientID:             audience,
		SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
	})}
}

// Verify checks the token signature against the remote key set.
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*rbac.Principal, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: token verification failed: %v", httpx.ErrUnauthorized, err)
	}
	var raw map[string]any
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", httpx.ErrUnauthorized, err)
	}
	return principalFromClaims(raw)
}

func principalFromClaims(claims map[string]any) (*rbac.Principal, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: token has no subject", httpx.ErrUnauthorized)
	}
	email, _ := claims["email"].(string)
	metadata, _ := claims["user_metadata"].(map[string]any)
	return &rbac.Principal{
		ID:       sub,
		Email:    email,
		Role:     roleFromMetadata(metadata),
		Metadata: metadata,
	}, nil
}

func roleFromMetadata(metadata map[string]any) rbac.Role {
	raw, _ := metadata["role"].(string)
	return rbac.ParseRole(raw)
}
