// Package metrics defines the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts completed requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_http_requests_total",
		Help: "Completed HTTP requests.",
	}, []string{"method", "status"})

	// RateLimited counts admissions rejected by the sliding-window limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})

	// Logins counts login attempts by outcome (ok, invalid_credentials, error).
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	// Refreshes counts refresh-rotation attempts by outcome
	// (ok, token_invalid, token_expired, refresh_invalid, user_not_found, error).
	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_token_refreshes_total",
		Help: "Refresh-token rotations by outcome.",
	}, []string{"result"})
)

// Handler exposes the default registry (wired at /metrics).
func Handler() http.Handler {
	return promhttp.Handler()
}
