package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/metrics"
	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/repository"
)

// maxUserAgentLength caps the user agent stored with a session.
const maxUserAgentLength = 512

// AuthService signs users in and out and resolves session tokens.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	cache    SessionCache
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewAuthService creates a new AuthService. A nil cache disables caching.
func NewAuthService(users UserStore, sessions SessionStore, cache SessionCache, cacheTTL time.Duration, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if cache == nil {
		cache = noopSessionCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		metrics:  recorder,
	}
}

// LoginInput defines input for signing in.
type LoginInput struct {
	EmailAddress string
	Password     string
	IPAddress    string
	UserAgent    string
}

// Login verifies credentials and opens a new session.
// It returns the session and the plaintext token for the cookie.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*model.Session, string, error) {
	email := model.NormalizeEmail(input.EmailAddress)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", fmt.Errorf("failed to look up user: %w", err)
		}
		// Burn the same Argon2id cost as a real check.
		_, _ = auth.VerifyPassword(input.Password, auth.DummyDigest())
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, "", ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordDigest)
	if err != nil {
		s.logger.Error("stored password digest is unusable",
			"user_id", user.ID,
			"error", err,
		)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, "", err
	}

	userAgent := input.UserAgent
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}

	session := &model.Session{
		ID:          ulid.Make().String(),
		UserID:      user.ID,
		TokenDigest: token.Digest,
		IPAddress:   input.IPAddress,
		UserAgent:   userAgent,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(metrics.LoginFailure)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)

	return session, token.Plaintext, nil
}

// Resolve maps a session token to the signed-in user.
// It never fails: a missing, malformed, or unknown token, or a storage
// error, all resolve to unauthenticated (nil, false).
func (s *AuthService) Resolve(ctx context.Context, token string) (*model.CurrentUser, bool) {
	if token == "" || !auth.ValidateTokenFormat(token) {
		return nil, false
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveResolveDuration(time.Since(start))
	}()

	digest := auth.TokenDigest(token)

	cached, err := s.cache.GetSession(ctx, digest)
	if err != nil {
		s.logger.Warn("session cache lookup failed", "error", err)
	}
	if cached != nil {
		s.metrics.IncSessionCacheHit()
		return cached, true
	}
	s.metrics.IncSessionCacheMiss()

	user, err := s.sessions.GetSessionUserByDigest(ctx, digest)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			s.logger.Error("session lookup failed", "error", err)
		}
		return nil, false
	}

	// SetSession never overwrites, so a logout that revoked this digest
	// after the read above keeps its marker.
	if err := s.cache.SetSession(ctx, digest, user, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache session", "session_id", user.SessionID, "error", err)
	}

	return user, true
}

// Logout ends the user's current session and revokes its cache entry.
// A session that is already gone counts as logged out; a failed revocation
// is returned so the client can retry.
func (s *AuthService) Logout(ctx context.Context, user *model.CurrentUser) error {
	if user == nil {
		return ErrUnauthenticated
	}

	if err := s.sessions.DeleteSession(ctx, user.SessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if user.SessionDigest != "" {
		if err := s.cache.RevokeSessions(ctx, user.SessionDigest); err != nil {
			s.logger.Error("failed to revoke cached session", "session_id", user.SessionID, "error", err)
			return fmt.Errorf("%w: %w", ErrSessionsNotRevoked, err)
		}
	}

	s.metrics.IncLogout()

	return nil
}
