//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/testutil"
)

func TestIntegrationSessionCache_RoundTrip(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	user := &model.CurrentUser{ID: "u1", EmailAddress: "a@x.com", SessionID: "s1"}
	if err := c.SetSession(ctx, "digest-1", user, time.Minute); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	got, err := c.GetSession(ctx, "digest-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.ID != "u1" || got.SessionID != "s1" || got.SessionDigest != "digest-1" {
		t.Errorf("GetSession = %+v", got)
	}

	if err := c.RevokeSessions(ctx, "digest-1", "digest-unknown"); err != nil {
		t.Fatalf("RevokeSessions failed: %v", err)
	}
	got, err = c.GetSession(ctx, "digest-1")
	if err != nil || got != nil {
		t.Errorf("expected miss after revoke, got %+v, %v", got, err)
	}
}

func TestIntegrationSessionCache_RevocationBlocksRepopulate(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if err := c.RevokeSessions(ctx, "digest-1"); err != nil {
		t.Fatalf("RevokeSessions failed: %v", err)
	}

	// A Resolve that read the row before logout writes back late.
	user := &model.CurrentUser{ID: "u1", EmailAddress: "a@x.com", SessionID: "s1"}
	if err := c.SetSession(ctx, "digest-1", user, time.Minute); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	got, err := c.GetSession(ctx, "digest-1")
	if err != nil || got != nil {
		t.Errorf("revoked digest must stay a miss, got %+v, %v", got, err)
	}

	ttl, err := c.Client().TTL(ctx, sessionKey("digest-1")).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= time.Minute || ttl > RevokedSessionTTL {
		t.Errorf("marker TTL = %v, want the revocation TTL", ttl)
	}
}

func TestIntegrationSessionCache_CorruptEntryIsMiss(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if err := c.Client().Set(ctx, sessionKey("bad"), "not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	got, err := c.GetSession(ctx, "bad")
	if err != nil || got != nil {
		t.Errorf("expected miss for corrupt entry, got %+v, %v", got, err)
	}
}

func TestIntegrationLoginRateLimit_LimitWithinWindow(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	const limit = 3
	for i := 0; i < limit; i++ {
		res, err := c.CheckLoginRateLimit(ctx, "10.0.0.1", limit, 3*time.Minute)
		if err != nil {
			t.Fatalf("CheckLoginRateLimit failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	res, err := c.CheckLoginRateLimit(ctx, "10.0.0.1", limit, 3*time.Minute)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if res.Allowed {
		t.Error("attempt beyond the limit should be denied")
	}
	// One attempt comes back every window/limit = 60s.
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want within (0, 1m]", res.RetryAfter)
	}

	ttl, err := c.Client().TTL(ctx, rateLimitLoginPrefix+hashIP("10.0.0.1")).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= time.Minute || ttl > 3*time.Minute {
		t.Errorf("bucket TTL = %v, want the window", ttl)
	}

	// A different address has its own bucket.
	res, err = c.CheckLoginRateLimit(ctx, "10.0.0.2", limit, 3*time.Minute)
	if err != nil || !res.Allowed {
		t.Errorf("other IP should be allowed, got %+v, %v", res, err)
	}
}

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}
