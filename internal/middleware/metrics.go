package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// RequestMetrics stores in-process HTTP counters for /metrics.
type RequestMetrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsClientErr  atomic.Uint64
	RequestsServerErr  atomic.Uint64
	StartTime          time.Time
}

func NewRequestMetrics() *RequestMetrics {
	return &RequestMetrics{StartTime: time.Now()}
}

// Snapshot returns current metrics
func (m *RequestMetrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":         m.RequestsTotal.Load(),
		"requests_in_progress":   m.RequestsInProgress.Load(),
		"requests_success":       m.RequestsSuccess.Load(),
		"requests_client_errors": m.RequestsClientErr.Load(),
		"requests_server_errors": m.RequestsServerErr.Load(),
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *RequestMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		switch {
		case wrapped.statusCode >= 500:
			m.RequestsServerErr.Add(1)
		case wrapped.statusCode >= 400:
			m.RequestsClientErr.Add(1)
		default:
			m.RequestsSuccess.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *RequestMetrics) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
