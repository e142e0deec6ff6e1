package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create creates a new refresh token in the database
func (r *tokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked_at, replaced_by_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	// Generate UUID if not provided
	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
		token.RevokedAt,
		token.ReplacedByToken,
	)

	if err != nil {
		// Check for unique constraint violation (duplicate token value)
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("token already exists: %w", ErrDuplicateToken)
			}
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

const tokenColumns = `id, user_id, token, expires_at, created_at, revoked_at, replaced_by_token`

func scanToken(scan func(dest ...any) error) (*domain.RefreshToken, error) {
	token := &domain.RefreshToken{}
	var revokedAt sql.NullTime
	var replacedBy sql.NullString

	err := scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
		&revokedAt,
		&replacedBy,
	)
	if err != nil {
		return nil, err
	}

	if revokedAt.Valid {
		token.RevokedAt = &revokedAt.Time
	}
	if replacedBy.Valid {
		token.ReplacedByToken = &replacedBy.String
	}

	return token, nil
}

// GetByValue retrieves a refresh token by its opaque value for a specific user
func (r *tokenRepository) GetByValue(ctx context.Context, value, userID string) (*domain.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens WHERE token = $1 AND user_id = $2`

	token, err := scanToken(r.db.DB.QueryRowContext(ctx, query, value, userID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by value: %w", err)
	}

	return token, nil
}

// GetActiveByUserID retrieves all active, non-expired tokens for a user
func (r *tokenRepository) GetActiveByUserID(ctx context.Context, userID string) ([]*domain.RefreshToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM refresh_tokens
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get active tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.RefreshToken
	for rows.Next() {
		token, err := scanToken(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tokens: %w", err)
	}

	return tokens, nil
}

// Rotate marks the token revoked and records its successor. The revoked_at
// guard makes the check-then-act sequence atomic: of two concurrent refresh
// calls on the same value, exactly one update hits the row.
func (r *tokenRepository) Rotate(ctx context.Context, value, userID, replacedBy string, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $4, replaced_by_token = $3
		WHERE token = $1 AND user_id = $2 AND revoked_at IS NULL
	`

	result, err := r.db.DB.ExecContext(ctx, query, value, userID, replacedBy, at)
	if err != nil {
		return fmt.Errorf("failed to rotate token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("token rotation lost: %w", ErrAlreadyRevoked)
	}

	return nil
}

// Revoke marks an active token revoked without linking a successor
func (r *tokenRepository) Revoke(ctx context.Context, value, userID string, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $3
		WHERE token = $1 AND user_id = $2 AND revoked_at IS NULL AND expires_at > $3
	`

	result, err := r.db.DB.ExecContext(ctx, query, value, userID, at)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no active token to revoke: %w", ErrAlreadyRevoked)
	}

	return nil
}

// RevokeCreatedAfter revokes every active token of the user created strictly
// after the given time
func (r *tokenRepository) RevokeCreatedAfter(ctx context.Context, userID string, after, at time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $3
		WHERE user_id = $1 AND revoked_at IS NULL AND created_at > $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, after, at)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke descendant tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// RevokeAllForUser revokes every active, non-expired token of the user
func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// DeleteExpired deletes all expired refresh tokens
func (r *tokenRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`

	_, err := r.db.DB.ExecContext(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return nil
}
