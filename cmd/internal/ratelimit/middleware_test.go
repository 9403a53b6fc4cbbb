package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddlewareThrottles(t *testing.T) {
	l := New(2, 10*time.Second)
	h := Middleware(l, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		req.RemoteAddr = "10.0.0.7:4455"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d", rec.Code)
	}
	if rec := do(); rec.Code != http.StatusNoContent {
		t.Fatalf("second request: got %d", rec.Code)
	}

	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d, want 429", rec.Code)
	}
	var body struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode 429 body: %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Fatalf("code = %q", body.Code)
	}
	if body.Details["max_requests"] != float64(2) || body.Details["window_seconds"] != float64(10) {
		t.Fatalf("details = %v", body.Details)
	}
}

func TestMiddlewareKeysByForwardedFor(t *testing.T) {
	l := New(1, 10*time.Second)
	h := Middleware(l, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		req.RemoteAddr = "10.0.0.1:1000" // shared proxy hop
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := do("203.0.113.5, 10.0.0.1"); got != http.StatusNoContent {
		t.Fatalf("client A first request: got %d", got)
	}
	if got := do("203.0.113.9, 10.0.0.1"); got != http.StatusNoContent {
		t.Fatalf("client B throttled by client A: got %d", got)
	}
	if got := do("203.0.113.5, 10.0.0.1"); got != http.StatusTooManyRequests {
		t.Fatalf("client A second request: got %d, want 429", got)
	}
}

func TestMiddlewareExemptPaths(t *testing.T) {
	l := New(1, 10*time.Second)
	h := Middleware(l, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.RemoteAddr = "10.0.0.7:4455"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("%s request %d: got %d", path, i+1, rec.Code)
			}
		}
	}
}
