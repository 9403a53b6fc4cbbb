package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookstore/cmd/internal/auth/session"
	"bookstore/cmd/internal/ratelimit"
)

// newTestApp wires a full in-memory app with a seeded admin.
func newTestApp(t *testing.T) *App {
	t.Helper()

	t.Setenv("BOOKSTORE_JWT_SECRET", "app-test-secret")
	t.Setenv("BOOKSTORE_DATABASE_URL", "")
	t.Setenv("BOOKSTORE_DEV_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("BOOKSTORE_DEV_ADMIN_PASSWORD", "admin pass")

	cfg := LoadConfig()
	a, err := New(context.Background(), cfg, NewLogger("error"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func testHandler(a *App) http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.catalog)
	return ratelimit.Middleware(a.limiter, mux)
}

func TestAppEndToEnd(t *testing.T) {
	a := newTestApp(t)
	h := testHandler(a)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// Seeded admin can log in.
	rec := post("/api/v1/auth/login", `{"email":"admin@example.com","password":"admin pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d: %s", rec.Code, rec.Body)
	}
	var pair session.TokenPair
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode pair: %v", err)
	}

	// The admin token passes the gate on a guarded write.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books",
		strings.NewReader(`{"title":"T","author":"A","price":100,"stock":1}`))
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	create := httptest.NewRecorder()
	h.ServeHTTP(create, req)
	if create.Code != http.StatusCreated {
		t.Fatalf("create book: got %d: %s", create.Code, create.Body)
	}

	// The created book is publicly listed.
	list := httptest.NewRecorder()
	h.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))
	if list.Code != http.StatusOK || !strings.Contains(list.Body.String(), `"title":"T"`) {
		t.Fatalf("list: got %d: %s", list.Code, list.Body)
	}

	// Refresh rotates and the old refresh token dies.
	refresh := post("/api/v1/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`)
	if refresh.Code != http.StatusOK {
		t.Fatalf("refresh: got %d: %s", refresh.Code, refresh.Body)
	}
	replay := post("/api/v1/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`)
	if replay.Code != http.StatusUnauthorized {
		t.Fatalf("replay: got %d", replay.Code)
	}
}

func TestAppRateLimiting(t *testing.T) {
	t.Setenv("BOOKSTORE_RATE_LIMIT_MAX", "3")
	t.Setenv("BOOKSTORE_RATE_LIMIT_WINDOW", "10s")
	a := newTestApp(t)
	h := testHandler(a)

	get := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.9.8.7:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		if got := get("/api/v1/books"); got != http.StatusOK {
			t.Fatalf("request %d: got %d", i+1, got)
		}
	}
	if got := get("/api/v1/books"); got != http.StatusTooManyRequests {
		t.Fatalf("over budget: got %d, want 429", got)
	}

	// Probes keep working while the client is throttled.
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if got := get(path); got != http.StatusOK {
			t.Fatalf("%s while throttled: got %d", path, got)
		}
	}
}

func TestAppRequiresSecret(t *testing.T) {
	t.Setenv("BOOKSTORE_JWT_SECRET", "")

	cfg := LoadConfig()
	if _, err := New(context.Background(), cfg, NewLogger("error")); err == nil {
		t.Fatal("New succeeded without a signing secret")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RateLimitMax != 30 || cfg.RateLimitWindow != 10*time.Second {
		t.Fatalf("rate limit defaults = %d/%s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if !cfg.Migrate {
		t.Fatal("Migrate should default to true")
	}
}
