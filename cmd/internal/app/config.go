package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
//
// Token and auth-surface settings live with their packages
// (session.LoadConfigFromEnv, authapi.LoadConfigFromEnv); this struct covers
// the process-level concerns.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// DatabaseURL empty means in-memory dev mode: no persistence, no
	// migrations, everything else behaves the same.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Migrate applies embedded goose migrations at startup (DB mode only).
	Migrate bool

	RateLimitMax    int
	RateLimitWindow time.Duration

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// DevAdminEmail/DevAdminPassword seed an admin account at startup when
	// both are set. Required to use in-memory mode at all (there is no
	// signup endpoint); a convenience for fresh databases.
	DevAdminEmail    string
	DevAdminPassword string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("BOOKSTORE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("BOOKSTORE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("BOOKSTORE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("BOOKSTORE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("BOOKSTORE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("BOOKSTORE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("BOOKSTORE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("BOOKSTORE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("BOOKSTORE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("BOOKSTORE_DB_MIN_CONNS", 0),

		Migrate: EnvBool("BOOKSTORE_MIGRATE", true),

		RateLimitMax:    EnvInt("BOOKSTORE_RATE_LIMIT_MAX", 30),
		RateLimitWindow: EnvDuration("BOOKSTORE_RATE_LIMIT_WINDOW", 10*time.Second),

		ReadinessRequireDB: EnvBool("BOOKSTORE_READINESS_REQUIRE_DB", false),

		DevAdminEmail:    EnvString("BOOKSTORE_DEV_ADMIN_EMAIL", ""),
		DevAdminPassword: EnvString("BOOKSTORE_DEV_ADMIN_PASSWORD", ""),
	}
}
