// Package ratelimit implements the sliding-window admission gate applied
// in front of every handler.
//
// The limiter is an explicitly owned component: one instance is created at
// startup and handed to the request pipeline, never package-global state.
// It is advisory per-process; a multi-instance deployment would swap the
// in-memory window for an external counter store behind the same
// Admit(key, now) seam.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a per-key sliding-window counter.
type Limiter struct {
	max    int
	window time.Duration

	mu   sync.Mutex
	hits map[string][]time.Time
}

// New creates a Limiter admitting at most max requests per key within any
// trailing window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		hits:   make(map[string][]time.Time),
	}
}

// Max returns the configured per-window budget.
func (l *Limiter) Max() int { return l.max }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Admit records a request for key at now and reports whether it is allowed.
//
// The prune-count-append sequence runs under the lock: concurrent requests
// for one key can neither undercount nor overcount admissions. Pruning on
// every access bounds per-key memory to max entries; keys whose window
// empties are deleted so idle clients do not pin map entries.
//
// Rejected requests are not recorded: a client hammering past its budget
// does not push its own recovery point further out.
func (l *Limiter) Admit(key string, now time.Time) bool {
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.hits[key]

	// Entries are appended in arrival order, so everything before the
	// first in-window entry is prunable in one slice.
	keep := 0
	for keep < len(times) && !times[keep].After(cutoff) {
		keep++
	}
	times = times[keep:]

	if len(times) >= l.max {
		if len(times) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = times
		}
		return false
	}

	l.hits[key] = append(times, now)
	return true
}
