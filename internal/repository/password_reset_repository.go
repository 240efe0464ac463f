package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"beststore/internal/domain"
	"beststore/internal/sqlbuilder"
)

var (
	ErrResetTokenNotFound = errors.New("password reset token not found")
)

// PasswordResetRepository stores single-use password reset tokens
type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	// MarkUsed consumes a token. It fails with ErrResetTokenNotFound if the
	// token does not exist or was already used.
	MarkUsed(ctx context.Context, token string, usedAt time.Time) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID, token.UserID, digestToken(token.Token), token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}
	return nil
}

func (r *passwordResetRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	query, args := sqlbuilder.From("password_reset_tokens").
		Select("id", "user_id", "expires_at", "created_at", "used_at").
		Where(sqlbuilder.Eq("token_hash", digestToken(token))).
		Build()

	resetToken := &domain.PasswordResetToken{Token: token}
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&resetToken.ID,
		&resetToken.UserID,
		&resetToken.ExpiresAt,
		&resetToken.CreatedAt,
		&usedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResetTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find password reset token: %w", err)
	}

	if usedAt.Valid {
		resetToken.UsedAt = &usedAt.Time
	}

	return resetToken, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, token string, usedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = $2 WHERE token_hash = $1 AND used_at IS NULL`,
		digestToken(token), usedAt)
	if err != nil {
		return fmt.Errorf("failed to mark password reset token used: %w", err)
	}

	return expectRow(result, ErrResetTokenNotFound)
}
