// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes passed to IncLogin.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Session metrics
	IncLogin(status string)
	IncLogout()
	IncSessionCacheHit()
	IncSessionCacheMiss()
	ObserveResolveDuration(duration time.Duration)

	// Post management metrics
	IncPostCreated()
	IncPostUpdated()
	IncPostDeleted()
	IncAuthorizationDenied()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
