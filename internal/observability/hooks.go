package observability

import (
	"context"

	"github.com/glambook/glambook-cli/internal/api"
)

// CLIHooks feeds client events into the collector and, when verbose, the
// trace writer. Level 0 collects silently, level 1 traces completed
// requests, level 2 additionally traces lifecycle events.
type CLIHooks struct {
	Collector *SessionCollector
	Trace     *TraceWriter
	Level     int
}

var _ api.Hooks = (*CLIHooks)(nil)

func (h *CLIHooks) OnRequestStart(context.Context, api.RequestInfo) {}

func (h *CLIHooks) OnRequestEnd(_ context.Context, info api.RequestInfo, result api.RequestResult) {
	failed := result.Err != nil || result.StatusCode >= 400
	h.Collector.RecordRequest(result.Duration, failed)
	if h.Level >= 1 && h.Trace != nil {
		if result.Err != nil {
			h.Trace.Event("%s %s -> error: %v", info.Method, info.Path, result.Err)
			return
		}
		h.Trace.Request(info.Method, info.Path, result.StatusCode, result.Duration)
	}
}

func (h *CLIHooks) OnAuthRetry(_ context.Context, info api.RequestInfo) {
	h.Collector.RecordAuthRetry()
	if h.Level >= 2 && h.Trace != nil {
		h.Trace.Event("replaying %s %s with refreshed token", info.Method, info.Path)
	}
}

func (h *CLIHooks) OnCancelled(_ context.Context, info api.RequestInfo) {
	h.Collector.RecordCancelled()
	if h.Level >= 2 && h.Trace != nil {
		h.Trace.Event("refused %s %s: logout in progress", info.Method, info.Path)
	}
}
