package authapi

import (
	"os"
	"strconv"
)

// Config defines runtime configuration for the auth HTTP surface.
type Config struct {
	// MaxBodyBytes caps request bodies on auth endpoints. Login and refresh
	// payloads are tiny; anything large is hostile.
	MaxBodyBytes int64
}

// DefaultConfig returns the defaults used when the environment is silent.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: 1 << 20}
}

// LoadConfigFromEnv loads the auth API configuration from environment
// variables. Optional:
//   - BOOKSTORE_AUTH_MAX_BODY_BYTES
//
// Returns ErrConfig if a set variable does not parse.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("BOOKSTORE_AUTH_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, ErrConfig
		}
		cfg.MaxBodyBytes = n
	}

	return cfg, nil
}
