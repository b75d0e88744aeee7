package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inkpost/inkpost/internal/model"
)

const (
	// sessionCachePrefix is the Redis key prefix for resolved sessions.
	sessionCachePrefix = "session:"

	// DefaultSessionTTL bounds how long a resolved session is served from Redis.
	DefaultSessionTTL = 10 * time.Minute

	// RevokedSessionTTL is how long a revocation marker blocks re-population.
	// It only has to outlive a Resolve that read the row before it was deleted.
	RevokedSessionTTL = time.Hour

	revokedMarker = "revoked"
)

// CachedSession is the JSON shape of a resolved session stored in Redis.
type CachedSession struct {
	UserID       string `json:"user_id"`
	EmailAddress string `json:"email_address"`
	SessionID    string `json:"session_id"`
}

func sessionKey(digest string) string {
	return sessionCachePrefix + digest
}

// GetSession returns the cached identity for a token digest.
// Returns nil if not found (cache miss). A revoked digest is also a miss.
func (c *Cache) GetSession(ctx context.Context, digest string) (*model.CurrentUser, error) {
	data, err := c.client.Get(ctx, sessionKey(digest)).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}
	if string(data) == revokedMarker {
		return nil, nil
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}
	if cached.UserID == "" || cached.SessionID == "" {
		return nil, nil
	}

	return &model.CurrentUser{
		ID:            cached.UserID,
		EmailAddress:  cached.EmailAddress,
		SessionID:     cached.SessionID,
		SessionDigest: digest,
	}, nil
}

// SetSession caches a resolved identity under its token digest.
// It never overwrites an existing key, so a revocation written while the
// session row was being read wins.
func (c *Cache) SetSession(ctx context.Context, digest string, user *model.CurrentUser, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	data, err := json.Marshal(CachedSession{
		UserID:       user.ID,
		EmailAddress: user.EmailAddress,
		SessionID:    user.SessionID,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.SetNX(ctx, sessionKey(digest), data, ttl).Err()
}

// RevokeSessions replaces cached identities with a revocation marker.
// Used on logout and user deletion.
func (c *Cache) RevokeSessions(ctx context.Context, digests ...string) error {
	if len(digests) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, d := range digests {
		pipe.Set(ctx, sessionKey(d), revokedMarker, RevokedSessionTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
