package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Token verification strategies.
const (
	VerifierRemote = "remote"
	VerifierJWT    = "jwt"
	VerifierJWKS   = "jwks"
)

// Sources of the role used by the gate.
const (
	RoleSourceToken   = "token"
	RoleSourceProfile = "profile"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":3000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	PGDSN            string `envconfig:"PG_DSN" required:"true"`
	PGMaxConns       int32  `envconfig:"PG_MAX_CONNS" default:"10"`
	PGSimpleProtocol bool   `envconfig:"PG_SIMPLE_PROTOCOL" default:"false"`

	SupabaseURL        string `envconfig:"SUPABASE_URL" required:"true"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseKey        string `envconfig:"SUPABASE_KEY"`
	SupabaseJWTSecret  string `envconfig:"SUPABASE_JWT_SECRET"`

	AuthVerifier    string        `envconfig:"AUTH_VERIFIER" default:"remote"`
	RoleSource      string        `envconfig:"ROLE_SOURCE" default:"token"`
	IdentityTimeout time.Duration `envconfig:"IDENTITY_TIMEOUT" default:"10s"`

	StorageEndpoint string `envconfig:"STORAGE_S3_ENDPOINT"`
	StorageRegion   string `envconfig:"STORAGE_S3_REGION" default:"us-east-1"`
	StorageKeyID    string `envconfig:"STORAGE_S3_KEY_ID"`
	StorageSecret   string `envconfig:"STORAGE_S3_SECRET"`

	UploadMaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"20971520"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SupabaseServiceKey == "" {
		cfg.SupabaseServiceKey = cfg.SupabaseKey
	}
	cfg.SupabaseURL = strings.TrimRight(cfg.SupabaseURL, "/")
	if cfg.StorageEndpoint == "" {
		cfg.StorageEndpoint = cfg.SupabaseURL + "/storage/v1/s3"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.PGDSN == "" {
		return errors.New("PG_DSN must be provided")
	}
	if c.SupabaseURL == "" {
		return errors.New("SUPABASE_URL must be provided")
	}
	if c.SupabaseServiceKey == "" {
		return errors.New("supabase service key must be provided (SUPABASE_SERVICE_KEY or SUPABASE_KEY)")
	}
	switch c.AuthVerifier {
	case VerifierRemote, VerifierJWKS:
	case VerifierJWT:
		if c.SupabaseJWTSecret == "" {
			return errors.New("SUPABASE_JWT_SECRET is required when AUTH_VERIFIER=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_VERIFIER %q", c.AuthVerifier)
	}
	switch c.RoleSource {
	case RoleSourceToken, RoleSourceProfile:
	default:
		return fmt.Errorf("unknown ROLE_SOURCE %q", c.RoleSource)
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// JWKSURL is the key set published by the identity service.
func (c *Config) JWKSURL() string {
	return c.SupabaseURL + "/auth/v1/.well-known/jwks.json"
}

// TokenIssuer is the iss claim of identity-issued tokens.
func (c *Config) TokenIssuer() string {
	return c.SupabaseURL + "/auth/v1"
}
