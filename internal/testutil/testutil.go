// Package testutil holds helpers shared by database and Redis tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/inkpost/inkpost/internal/migrations"
	"github.com/inkpost/inkpost/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 520520

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema rolls back every migration and applies them again.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := migrations.Reset(ctx, db); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with a unique address and the given digest.
func NewTestUser(t testing.TB, passwordDigest string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:             ulid.Make().String(),
		EmailAddress:   UniqueID("user") + "@example.com",
		PasswordDigest: passwordDigest,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewTestSession creates a session for the user with the given token digest.
func NewTestSession(t testing.TB, userID, digest string) *model.Session {
	t.Helper()
	return &model.Session{
		ID:          ulid.Make().String(),
		UserID:      userID,
		TokenDigest: digest,
		IPAddress:   "127.0.0.1",
		UserAgent:   "testutil",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestPost creates a published post owned by userID.
func NewTestPost(t testing.TB, userID string) *model.Post {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Post{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Title:     "Test post",
		Body:      "Test body",
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var uniqueSeq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), uniqueSeq.Add(1))
}
