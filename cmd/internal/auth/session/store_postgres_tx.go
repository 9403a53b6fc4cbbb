package session

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"bookstore/cmd/security/password"
)

// findLiveForUpdateTx locks the user's live rows and scans them for the one
// matching the presented plaintext.
//
// The FOR UPDATE lock is what makes rotation safe: a concurrent transaction
// presenting the same token blocks here until the first commits, and under
// read-committed Postgres re-evaluates the revoked_at predicate against the
// committed row, so the loser sees no live match.
func findLiveForUpdateTx(ctx context.Context, tx pgx.Tx, now time.Time, userID int64, presented string) (Row, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at, revoked_at
		FROM user_tokens
		WHERE user_id = $1
		  AND revoked_at IS NULL
		  AND expires_at > $2
		ORDER BY created_at
		FOR UPDATE
	`, userID, now)
	if err != nil {
		return Row{}, err
	}
	defer rows.Close()

	var live []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.UserID, &r.TokenHash, &r.CreatedAt, &r.ExpiresAt, &r.RevokedAt); err != nil {
			return Row{}, err
		}
		live = append(live, r)
	}
	if err := rows.Err(); err != nil {
		return Row{}, err
	}

	for _, r := range live {
		if password.VerifySecret(presented, r.TokenHash) {
			return r, nil
		}
	}
	return Row{}, ErrRefreshTokenInvalid
}

func revokeTx(ctx context.Context, tx pgx.Tx, now time.Time, id string) error {
	_, err := tx.Exec(ctx, `
		UPDATE user_tokens
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE id = $1
	`, id, now)
	return err
}
