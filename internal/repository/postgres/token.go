package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmagtibay/clinic-api/internal/model"
)

// ResetPassword consumes a valid unused token in one transaction: the owning
// user gets the new password hash and becomes active, the token is marked
// used. An expired or already-used token reads as not found.
func (r *tokenRepository) ResetPassword(ctx context.Context, token string, newPasswordHash string) (*model.User, error) {
	var user model.User

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var userID uuid.UUID
		tokenQuery := `
			SELECT user_id FROM password_reset_tokens
			WHERE token = $1 AND used_at IS NULL AND expires_at > NOW()
			FOR UPDATE
		`
		err := tx.GetContext(ctx, &userID, tokenQuery, token)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up reset token: %w", err)
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE password_reset_tokens SET used_at = $1 WHERE token = $2`,
			now, token,
		); err != nil {
			return fmt.Errorf("failed to consume reset token: %w", err)
		}

		userQuery := `
			UPDATE users
			SET password_hash = $1, is_active = TRUE, updated_at = $2
			WHERE id = $3
			RETURNING id, username, email, password_hash, first_name, last_name,
					  is_staff, is_active, created_at, updated_at
		`
		if err := tx.GetContext(ctx, &user, userQuery, newPasswordHash, now, userID); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
