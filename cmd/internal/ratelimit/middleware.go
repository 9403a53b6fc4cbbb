package ratelimit

import (
	"net/http"
	"time"

	"bookstore/cmd/internal/httpx"
	"bookstore/cmd/internal/metrics"
)

// Exempt paths bypass admission entirely: probes and scrapes must keep
// working while clients are throttled.
var exemptPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// Middleware enforces the limiter per client key before the wrapped handler
// runs. Keys come from httpx.ClientKey, so one misbehaving client behind a
// proxy does not consume the budget of its neighbors.
func Middleware(l *Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exemptPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.Admit(httpx.ClientKey(r), time.Now()) {
			metrics.RateLimited.Inc()
			httpx.WriteErrorDetails(w, http.StatusTooManyRequests, "RATE_LIMITED",
				"too many requests, slow down", map[string]any{
					"max_requests":   l.Max(),
					"window_seconds": int(l.Window().Seconds()),
				})
			return
		}

		next.ServeHTTP(w, r)
	})
}
