package session

import (
	"context"
	"time"
)

// Row is one refresh-token record. TokenHash is a salted bcrypt digest of
// the SHA-256 of the plaintext token; the plaintext is never persisted.
//
// A row is live iff RevokedAt is nil and ExpiresAt is after now. RevokedAt,
// once set, is never cleared.
type Row struct {
	ID        string
	UserID    int64
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Live reports whether the row is usable at now.
func (r Row) Live(now time.Time) bool {
	return r.RevokedAt == nil && r.ExpiresAt.After(now)
}

// Store abstracts persistence for refresh-token records.
//
// Because every digest is independently salted, there is no lookup by
// hash: implementations scan the user's live rows and run a constant-time
// verify against the presented plaintext. That cost is O(live sessions per
// user), which rotation keeps small.
//
// Rotate and RevokeMatching must be atomic with respect to concurrent
// calls presenting the same token: of two concurrent Rotates, exactly one
// may succeed; the loser observes the record already revoked and gets
// ErrRefreshTokenInvalid. Multiple live rows per user are expected
// (multi-device sessions); rotation revokes only the presented one.
type Store interface {
	// Issue hashes plaintext and persists a new live record for userID.
	Issue(ctx context.Context, now time.Time, userID int64, plaintext string, expiresAt time.Time) (Row, error)

	// LiveByUser returns the user's not-revoked, not-expired records.
	LiveByUser(ctx context.Context, now time.Time, userID int64) ([]Row, error)

	// Rotate finds the live record matching presented, revokes it, and
	// persists replacement in its place, atomically. No live match yields
	// ErrRefreshTokenInvalid and no writes.
	Rotate(ctx context.Context, now time.Time, userID int64, presented, replacement string, replacementExpiresAt time.Time) (old Row, fresh Row, err error)

	// RevokeMatching finds the live record matching presented and revokes
	// it, atomically. No live match yields ErrRefreshTokenInvalid: a
	// second logout with the same token fails, by design.
	RevokeMatching(ctx context.Context, now time.Time, userID int64, presented string) (Row, error)

	// RevokeAll revokes every live record for userID. Idempotent.
	RevokeAll(ctx context.Context, now time.Time, userID int64) error
}
