package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"bookstore/cmd/security/password"
)

// PostgresStore implements Store on the user_tokens table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed refresh-token store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("session: nil db pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// Issue hashes plaintext and inserts a new live record.
func (s *PostgresStore) Issue(ctx context.Context, now time.Time, userID int64, plaintext string, expiresAt time.Time) (Row, error) {
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

	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_tokens (id, user_id, token_hash, created_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, NULL)
	`, row.ID, row.UserID, row.TokenHash, row.CreatedAt, row.ExpiresAt)
	if err != nil {
		return Row{}, err
	}

	return row, nil
}

// LiveByUser returns the user's not-revoked, not-expired records.
func (s *PostgresStore) LiveByUser(ctx context.Context, now time.Time, userID int64) ([]Row, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at, revoked_at
		FROM user_tokens
		WHERE user_id = $1
		  AND revoked_at IS NULL
		  AND expires_at > $2
		ORDER BY created_at
	`, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.UserID, &r.TokenHash, &r.CreatedAt, &r.ExpiresAt, &r.RevokedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Rotate revokes the live record matching presented and inserts the
// replacement in one transaction.
func (s *PostgresStore) Rotate(ctx context.Context, now time.Time, userID int64, presented, replacement string, replacementExpiresAt time.Time) (Row, Row, error) {
	// Hash outside the transaction; bcrypt is slow and must not extend
	// row-lock hold time.
	newHash, err := password.HashSecret(replacement)
	if err != nil {
		return Row{}, Row{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Row{}, Row{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := findLiveForUpdateTx(ctx, tx, now, userID, presented)
	if err != nil {
		return Row{}, Row{}, err
	}

	if err := revokeTx(ctx, tx, now, old.ID); err != nil {
		return Row{}, Row{}, err
	}

	fresh := Row{
		ID:        ulid.Make().String(),
		UserID:    userID,
		TokenHash: newHash,
		CreatedAt: now,
		ExpiresAt: replacementExpiresAt,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO user_tokens (id, user_id, token_hash, created_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, NULL)
	`, fresh.ID, fresh.UserID, fresh.TokenHash, fresh.CreatedAt, fresh.ExpiresAt)
	if err != nil {
		return Row{}, Row{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Row{}, Row{}, err
	}

	revoked := now
	old.RevokedAt = &revoked
	return old, fresh, nil
}

// RevokeMatching revokes the live record matching presented in one
// transaction.
func (s *PostgresStore) RevokeMatching(ctx context.Context, now time.Time, userID int64, presented string) (Row, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Row{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row, err := findLiveForUpdateTx(ctx, tx, now, userID, presented)
	if err != nil {
		return Row{}, err
	}

	if err := revokeTx(ctx, tx, now, row.ID); err != nil {
		return Row{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Row{}, err
	}

	revoked := now
	row.RevokedAt = &revoked
	return row, nil
}

// RevokeAll revokes every live record for userID. Idempotent: already
// revoked rows keep their original revoked_at.
func (s *PostgresStore) RevokeAll(ctx context.Context, now time.Time, userID int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE user_tokens
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE user_id = $1
	`, userID, now)
	return err
}
