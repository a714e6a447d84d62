// Package observability collects request metrics and emits debug traces for
// a single CLI invocation.
package observability

import (
	"sync"
	"time"
)

// SessionMetrics is a snapshot of one invocation's API activity.
type SessionMetrics struct {
	Requests      int           `json:"requests"`
	Failures      int           `json:"failures"`
	AuthRetries   int           `json:"auth_retries"`
	Cancelled     int           `json:"cancelled"`
	TotalDuration time.Duration `json:"total_duration"`
	WallTime      time.Duration `json:"wall_time"`
}

// SessionCollector accumulates metrics across requests. Safe for concurrent
// use; commands that fan out requests share one collector.
type SessionCollector struct {
	mu          sync.Mutex
	start       time.Time
	requests    int
	failures    int
	authRetries int
	cancelled   int
	total       time.Duration
}

// NewSessionCollector creates a collector with the wall clock started.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{start: time.Now()}
}

// RecordRequest records one completed attempt.
func (c *SessionCollector) RecordRequest(d time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	c.total += d
	if failed {
		c.failures++
	}
}

// RecordAuthRetry records a refresh-and-replay cycle.
func (c *SessionCollector) RecordAuthRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authRetries++
}

// RecordCancelled records a request refused by an in-progress logout.
func (c *SessionCollector) RecordCancelled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled++
}

// Snapshot returns the metrics collected so far.
func (c *SessionCollector) Snapshot() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SessionMetrics{
		Requests:      c.requests,
		Failures:      c.failures,
		AuthRetries:   c.authRetries,
		Cancelled:     c.cancelled,
		TotalDuration: c.total,
		WallTime:      time.Since(c.start),
	}
}
