package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"bookstore/cmd/security/password"
)

// MemoryStore implements Store in process memory.
//
// It backs DB-less development mode and unit tests. A single mutex
// serializes Rotate and RevokeMatching end to end, which gives the same
// one-winner guarantee the Postgres store gets from row locks.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]*Row
}

// NewMemoryStore creates an empty in-memory refresh-token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*Row)}
}

// Issue hashes plaintext and records a new live row.
func (s *MemoryStore) Issue(_ context.Context, now time.Time, userID int64, plaintext string, expiresAt time.Time) (Row, error) {
	hash, err := password.HashSecret(plaintext)
	if err != nil {
		return Row{}, err
	}

	row := Row{
		ID:        ulid.Make().String(),
		UserID:    userID,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.ID] = &row

	return row, nil
}

// LiveByUser returns the user's not-revoked, not-expired rows.
func (s *MemoryStore) LiveByUser(_ context.Context, now time.Time, userID int64) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Row
	for _, r := range s.rows {
		if r.UserID == userID && r.Live(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Rotate revokes the live row matching presented and records the
// replacement under the lock.
func (s *MemoryStore) Rotate(_ context.Context, now time.Time, userID int64, presented, replacement string, replacementExpiresAt time.Time) (Row, Row, error) {
	newHash, err := password.HashSecret(replacement)
	if err != nil {
		return Row{}, Row{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.findLiveLocked(now, userID, presented)
	if old == nil {
		return Row{}, Row{}, ErrRefreshTokenInvalid
	}

	revoked := now
	old.RevokedAt = &revoked

	fresh := Row{
		ID:        ulid.Make().String(),
		UserID:    userID,
		TokenHash: newHash,
		CreatedAt: now,
		ExpiresAt: replacementExpiresAt,
	}
	s.rows[fresh.ID] = &fresh

	return *old, fresh, nil
}

// RevokeMatching revokes the live row matching presented under the lock.
func (s *MemoryStore) RevokeMatching(_ context.Context, now time.Time, userID int64, presented string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findLiveLocked(now, userID, presented)
	if row == nil {
		return Row{}, ErrRefreshTokenInvalid
	}

	revoked := now
	row.RevokedAt = &revoked
	return *row, nil
}

// RevokeAll revokes every live row for userID.
func (s *MemoryStore) RevokeAll(_ context.Context, now time.Time, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rows {
		if r.UserID == userID && r.RevokedAt == nil {
			revoked := now
			r.RevokedAt = &revoked
		}
	}
	return nil
}

func (s *MemoryStore) findLiveLocked(now time.Time, userID int64, presented string) *Row {
	for _, r := range s.rows {
		if r.UserID == userID && r.Live(now) && password.VerifySecret(presented, r.TokenHash) {
			return r
		}
	}
	return nil
}
