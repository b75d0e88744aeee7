package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inkpost/inkpost/internal/model"
)

// Common errors for session repository operations.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// CreateSession inserts a new session.
func (r *Repository) CreateSession(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_digest, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenDigest,
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSessionUserByDigest resolves a token digest to the session's owner.
// The join guarantees the user still exists.
func (r *Repository) GetSessionUserByDigest(ctx context.Context, digest string) (*model.CurrentUser, error) {
	query := `
		SELECT s.id, u.id, u.email_address
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_digest = $1
	`

	user := model.CurrentUser{SessionDigest: digest}
	err := r.pool.QueryRow(ctx, query, digest).Scan(
		&user.SessionID,
		&user.ID,
		&user.EmailAddress,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by digest: %w", err)
	}

	return &user, nil
}

// DeleteSession removes a session by ID.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}
