package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"campusauth/internal/models"
)

// ErrResetTokenInvalid covers not-found, expired and already-used tokens.
// Callers must not be able to tell those apart.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

type PasswordResetRepository interface {
	// Issue creates a reset record for the user and returns the plaintext
	// token exactly once. Only its hash is stored.
	Issue(ctx context.Context, userID string, ttl time.Duration) (string, error)
	// Consume marks the record matching the plaintext token as used and
	// invalidates every other outstanding token for the same user. Returns
	// the user id the token belongs to.
	Consume(ctx context.Context, plaintext string) (string, error)
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plaintext := base64.RawURLEncoding.EncodeToString(raw)

	now := time.Now().UTC()
	reset := &models.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashToken(plaintext),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	query := `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, reset.ID, reset.UserID, reset.TokenHash, reset.ExpiresAt, reset.CreatedAt); err != nil {
		return "", err
	}
	return plaintext, nil
}

func (r *passwordResetRepository) Consume(ctx context.Context, plaintext string) (string, error) {
	tokenHash := hashToken(plaintext)
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// The conditional UPDATE is the atomic step: when two confirms race on
	// the same token, exactly one matches a row.
	var userID string
	err = tx.QueryRowContext(ctx, `
		UPDATE password_resets
		SET used = TRUE, used_at = $2
		WHERE token_hash = $1
		AND used = FALSE
		AND expires_at > $2
		RETURNING user_id
	`, tokenHash, now).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrResetTokenInvalid
		}
		return "", err
	}

	// Any other outstanding reset links for this user stop working too.
	if _, err := tx.ExecContext(ctx, `
		UPDATE password_resets
		SET used = TRUE, used_at = $2
		WHERE user_id = $1
		AND used = FALSE
	`, userID, now); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return userID, nil
}

func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
