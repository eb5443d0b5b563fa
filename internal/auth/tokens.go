package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Issued tokens are recorded so logout can revoke them server-side; the JWT
// middleware rejects tokens that are missing, revoked or past expiry here
// even when the signature still verifies.

func recordToken(ctx context.Context, db *sql.DB, token, userID string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO auth_tokens (token, user_id, expires_at, revoked, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		token, userID, expiresAt.Unix(), false, time.Now().Unix())
	return err
}

func tokenActive(ctx context.Context, db *sql.DB, token string) (bool, error) {
	var revoked bool
	var expiresAt int64
	err := db.QueryRowContext(ctx,
		`SELECT revoked, expires_at FROM auth_tokens WHERE token=$1`, token).
		Scan(&revoked, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !revoked && time.Now().Unix() < expiresAt, nil
}

func revokeToken(ctx context.Context, db *sql.DB, token string) error {
	_, err := db.ExecContext(ctx, `UPDATE auth_tokens SET revoked=$1 WHERE token=$2`, true, token)
	return err
}
