package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/metrics"
	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/repository/memory"
)

// fakeCache is an in-memory SessionCache with the Redis semantics:
// SetSession does not overwrite, and a revoked digest reads as a miss.
type fakeCache struct {
	mu        sync.Mutex
	entries   map[string]model.CurrentUser
	revoked   map[string]bool
	getErr    error
	revokeErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string]model.CurrentUser),
		revoked: make(map[string]bool),
	}
}

func (c *fakeCache) GetSession(_ context.Context, digest string) (*model.CurrentUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	u, ok := c.entries[digest]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *fakeCache) SetSession(_ context.Context, digest string, user *model.CurrentUser, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[digest]; ok || c.revoked[digest] {
		return nil
	}
	c.entries[digest] = *user
	return nil
}

func (c *fakeCache) RevokeSessions(_ context.Context, digests ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revokeErr != nil {
		return c.revokeErr
	}
	for _, d := range digests {
		delete(c.entries, d)
		c.revoked[d] = true
	}
	return nil
}

func (c *fakeCache) has(digest string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[digest]
	return ok
}

func (c *fakeCache) isRevoked(digest string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revoked[digest]
}

// drop forgets a cached entry as if its TTL had run out.
func (c *fakeCache) drop(digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, digest)
}

// failingSessions wraps a SessionStore and fails lookups.
type failingSessions struct {
	SessionStore
}

func (failingSessions) GetSessionUserByDigest(context.Context, string) (*model.CurrentUser, error) {
	return nil, errors.New("connection refused")
}

// interleavedSessions runs between after a session row is read and before
// Resolve gets to write it back to the cache.
type interleavedSessions struct {
	SessionStore
	between func()
}

func (s *interleavedSessions) GetSessionUserByDigest(ctx context.Context, digest string) (*model.CurrentUser, error) {
	user, err := s.SessionStore.GetSessionUserByDigest(ctx, digest)
	if err == nil && s.between != nil {
		between := s.between
		s.between = nil
		between()
	}
	return user, err
}

type testEnv struct {
	store   *memory.Store
	cache   *fakeCache
	metrics *metrics.InMemoryRecorder
	auth    *AuthService
	users   *UserService
	posts   *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	cache := newFakeCache()
	recorder := metrics.NewInMemory()

	return &testEnv{
		store:   store,
		cache:   cache,
		metrics: recorder,
		auth:    NewAuthService(store, store, cache, time.Minute, logger, recorder),
		users:   NewUserService(store, cache, logger),
		posts:   NewPostService(store, logger, recorder),
	}
}

// signIn registers email/password and logs in, returning the resolved user.
func (e *testEnv) signIn(t *testing.T, email, password string) (*model.CurrentUser, string) {
	t.Helper()
	ctx := context.Background()

	if _, err := e.users.GetUserByEmail(ctx, email); errors.Is(err, ErrUserNotFound) {
		_, err := e.users.Register(ctx, email, password)
		require.NoError(t, err)
	}

	_, token, err := e.auth.Login(ctx, LoginInput{EmailAddress: email, Password: password})
	require.NoError(t, err)

	user, ok := e.auth.Resolve(ctx, token)
	require.True(t, ok)
	return user, token
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
