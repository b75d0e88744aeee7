package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/repository"
)

// UserService manages accounts.
type UserService struct {
	users  UserStore
	cache  SessionCache
	logger *slog.Logger
}

// NewUserService creates a new UserService. Without a cache the service can
// register and look up users but refuses DeleteUser, since sessions cached
// by the server could not be revoked.
func NewUserService(users UserStore, cache SessionCache, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, cache: cache, logger: logger}
}

// Register creates an account with a normalized email and a hashed password.
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = model.NormalizeEmail(email)

	if verr := validateCredentials(email, password); verr != nil {
		return nil, verr
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             ulid.Make().String(),
		EmailAddress:   email,
		PasswordDigest: digest,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			verr := &ValidationError{cause: ErrEmailTaken}
			verr.add("email_address", msgTaken)
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail looks up an account by address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account with all its sessions and posts in one
// transaction, then revokes the removed sessions in the cache.
// The user stays deleted when revocation fails; the error reports it.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if s.cache == nil {
		return ErrSessionCacheRequired
	}

	digests, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.cache.RevokeSessions(ctx, digests...); err != nil {
		s.logger.Error("failed to revoke sessions of deleted user",
			"user_id", id,
			"sessions", len(digests),
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrSessionsNotRevoked, err)
	}

	return nil
}
