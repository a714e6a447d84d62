package observability

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// TraceWriter writes one-line request traces, normally to stderr so they
// never pollute parseable stdout.
type TraceWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTraceWriter creates a trace writer.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

// Request traces one completed attempt.
func (t *TraceWriter) Request(method, path string, status int, d time.Duration) {
	t.line("%s %s -> %d (%s)", method, path, status, d.Round(time.Millisecond))
}

// Event traces a lifecycle event such as a refresh replay or a refusal.
func (t *TraceWriter) Event(format string, args ...any) {
	t.line(format, args...)
}

func (t *TraceWriter) line(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "[gbk] "+format+"\n", args...)
}
