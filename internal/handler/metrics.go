package handler

import (
	"fmt"
	"net/http"

	"github.com/inkpost/inkpost/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "inkpost_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "inkpost_logins_total{status=\"failure\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "inkpost_logins_total{status=\"rate_limited\"} %d\n", snap.LoginsRateLimited)
	writeMetric(w, "inkpost_logouts_total %d\n", snap.Logouts)

	writeMetric(w, "inkpost_session_cache_hits_total %d\n", snap.SessionCacheHits)
	writeMetric(w, "inkpost_session_cache_misses_total %d\n", snap.SessionCacheMisses)
	writeMetric(w, "inkpost_session_resolve_duration_seconds_count %d\n", snap.ResolveDurationCount)
	writeMetric(w, "inkpost_session_resolve_duration_seconds_sum %.6f\n", float64(snap.ResolveDurationTotalNs)/1e9)

	writeMetric(w, "inkpost_posts_created_total %d\n", snap.PostsCreated)
	writeMetric(w, "inkpost_posts_updated_total %d\n", snap.PostsUpdated)
	writeMetric(w, "inkpost_posts_deleted_total %d\n", snap.PostsDeleted)
	writeMetric(w, "inkpost_authorization_denied_total %d\n", snap.AuthorizationDenied)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
