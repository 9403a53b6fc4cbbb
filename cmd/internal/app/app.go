// Package app wires the bookstore gateway runtime: config, logging, the
// database pool, migrations, and the HTTP pipeline.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookstore/cmd/identity"
	authapi "bookstore/cmd/internal/auth/api"
	"bookstore/cmd/internal/auth/gate"
	"bookstore/cmd/internal/auth/session"
	"bookstore/cmd/internal/books"
	"bookstore/cmd/internal/migrations"
	"bookstore/cmd/internal/ratelimit"
	"bookstore/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the gateway runtime: it owns the DB pool, the rate limiter, and
// the HTTP server wiring.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	limiter *ratelimit.Limiter
	auth    *authapi.Handler
	catalog *books.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	codec, err := token.NewCodec(sessCfg.Secret, sessCfg.Algorithm, sessCfg.AccessTTL, sessCfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	var (
		dbPool    *pgxpool.Pool
		dbEnabled bool

		users     identity.Store
		sessStore session.Store
		bookStore books.Store
	)

	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		users = identity.NewMemoryStore()
		sessStore = session.NewMemoryStore()
		bookStore = books.NewMemoryStore()
	} else {
		if cfg.Migrate {
			if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
				return nil, err
			}
			log.Info("db.migrations.applied")
		}

		dbPool, err = NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dbEnabled = true
		log.Info("db.enabled.postgres_store")

		if users, err = identity.NewPostgresStore(dbPool); err != nil {
			return nil, err
		}
		if sessStore, err = session.NewPostgresStore(dbPool); err != nil {
			return nil, err
		}
		if bookStore, err = books.NewPostgresStore(dbPool); err != nil {
			return nil, err
		}
	}

	if err := seedDevAdmin(ctx, cfg, log, users); err != nil {
		return nil, err
	}

	svc, err := session.NewService(codec, sessStore, users)
	if err != nil {
		return nil, err
	}
	g := gate.New(codec)

	authCfg, err := authapi.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	auth, err := authapi.NewHandler(log, authCfg, svc, users, g)
	if err != nil {
		return nil, err
	}
	catalog, err := books.NewHandler(log, bookStore, g, authCfg.MaxBodyBytes)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		limiter:   ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow),
		auth:      auth,
		catalog:   catalog,
	}, nil
}

// seedDevAdmin creates the configured admin account. An existing account
// with the same email is fine (restarts); anything else is fatal.
func seedDevAdmin(ctx context.Context, cfg Config, log Logger, users identity.Store) error {
	if cfg.DevAdminEmail == "" || cfg.DevAdminPassword == "" {
		return nil
	}

	_, err := users.Create(ctx, identity.CreateUserInput{
		Email:    cfg.DevAdminEmail,
		Name:     "Admin",
		Password: cfg.DevAdminPassword,
		Role:     identity.RoleAdmin,
		Now:      time.Now().UTC(),
	})
	if errors.Is(err, identity.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("admin.seeded", "email", cfg.DevAdminEmail)
	return nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.catalog)

	// The limiter sits inside the logger so throttled requests still show
	// up in the access log.
	handler := WithRequestLogging(ratelimit.Middleware(a.limiter, mux), a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
