package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginsSucceeded        uint64
	LoginsFailed           uint64
	LoginsRateLimited      uint64
	Logouts                uint64
	SessionCacheHits       uint64
	SessionCacheMisses     uint64
	ResolveDurationCount   uint64
	ResolveDurationTotalNs int64
	PostsCreated           uint64
	PostsUpdated           uint64
	PostsDeleted           uint64
	AuthorizationDenied    uint64
}

// InMemoryRecorder stores metrics in memory.
// It backs the /metrics endpoint and is inspected directly in tests.
type InMemoryRecorder struct {
	loginsSucceeded        uint64
	loginsFailed           uint64
	loginsRateLimited      uint64
	logouts                uint64
	sessionCacheHits       uint64
	sessionCacheMisses     uint64
	resolveDurationCount   uint64
	resolveDurationTotalNs int64
	postsCreated           uint64
	postsUpdated           uint64
	postsDeleted           uint64
	authorizationDenied    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginsSucceeded:        atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:           atomic.LoadUint64(&m.loginsFailed),
		LoginsRateLimited:      atomic.LoadUint64(&m.loginsRateLimited),
		Logouts:                atomic.LoadUint64(&m.logouts),
		SessionCacheHits:       atomic.LoadUint64(&m.sessionCacheHits),
		SessionCacheMisses:     atomic.LoadUint64(&m.sessionCacheMisses),
		ResolveDurationCount:   atomic.LoadUint64(&m.resolveDurationCount),
		ResolveDurationTotalNs: atomic.LoadInt64(&m.resolveDurationTotalNs),
		PostsCreated:           atomic.LoadUint64(&m.postsCreated),
		PostsUpdated:           atomic.LoadUint64(&m.postsUpdated),
		PostsDeleted:           atomic.LoadUint64(&m.postsDeleted),
		AuthorizationDenied:    atomic.LoadUint64(&m.authorizationDenied),
	}
}

// IncLogin increments the counter for the given login outcome.
// Unknown statuses count as failures.
func (m *InMemoryRecorder) IncLogin(status string) {
	switch status {
	case LoginSuccess:
		atomic.AddUint64(&m.loginsSucceeded, 1)
	case LoginRateLimited:
		atomic.AddUint64(&m.loginsRateLimited, 1)
	default:
		atomic.AddUint64(&m.loginsFailed, 1)
	}
}

// IncLogout increments logout counter.
func (m *InMemoryRecorder) IncLogout() {
	atomic.AddUint64(&m.logouts, 1)
}

// IncSessionCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncSessionCacheHit() {
	atomic.AddUint64(&m.sessionCacheHits, 1)
}

// IncSessionCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncSessionCacheMiss() {
	atomic.AddUint64(&m.sessionCacheMisses, 1)
}

// ObserveResolveDuration records how long a session lookup took.
func (m *InMemoryRecorder) ObserveResolveDuration(duration time.Duration) {
	atomic.AddUint64(&m.resolveDurationCount, 1)
	atomic.AddInt64(&m.resolveDurationTotalNs, duration.Nanoseconds())
}

// IncPostCreated increments post created counter.
func (m *InMemoryRecorder) IncPostCreated() {
	atomic.AddUint64(&m.postsCreated, 1)
}

// IncPostUpdated increments post updated counter.
func (m *InMemoryRecorder) IncPostUpdated() {
	atomic.AddUint64(&m.postsUpdated, 1)
}

// IncPostDeleted increments post deleted counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	atomic.AddUint64(&m.postsDeleted, 1)
}

// IncAuthorizationDenied increments the denied mutation counter.
func (m *InMemoryRecorder) IncAuthorizationDenied() {
	atomic.AddUint64(&m.authorizationDenied, 1)
}
