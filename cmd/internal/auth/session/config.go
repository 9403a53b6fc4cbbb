package session

import (
	"os"
	"strings"
	"time"
)

// Config defines runtime configuration for the session subsystem.
//
// It is environment-driven so deployments can tune token lifetimes and
// rotate the signing secret without code changes.
type Config struct {
	// Secret is the shared HMAC signing secret for access and refresh
	// tokens. Required.
	Secret string

	// Algorithm is the JWT signing algorithm (HS256, HS384, HS512).
	Algorithm string

	// AccessTTL is the access-token lifetime (typically minutes).
	AccessTTL time.Duration

	// RefreshTTL is the refresh-token lifetime (typically days). It also
	// bounds the stored record's expires_at.
	RefreshTTL time.Duration
}

// DefaultConfig returns defaults matching the service's documented behavior.
// The secret has no default; production must set it.
func DefaultConfig() Config {
	return Config{
		Algorithm:  "HS256",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - BOOKSTORE_JWT_SECRET
//
// Optional (durations must be valid Go duration strings):
//   - BOOKSTORE_JWT_ALGORITHM
//   - BOOKSTORE_ACCESS_TOKEN_TTL
//   - BOOKSTORE_REFRESH_TOKEN_TTL
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Secret = strings.TrimSpace(os.Getenv("BOOKSTORE_JWT_SECRET"))
	if cfg.Secret == "" {
		return Config{}, ErrConfig
	}

	if v := strings.TrimSpace(os.Getenv("BOOKSTORE_JWT_ALGORITHM")); v != "" {
		cfg.Algorithm = v
	}

	if v := os.Getenv("BOOKSTORE_ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTTL = d
	}

	if v := os.Getenv("BOOKSTORE_REFRESH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}

	// Refresh tokens shorter-lived than access tokens would make rotation
	// meaningless.
	if cfg.RefreshTTL < cfg.AccessTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
