package api

import (
	"context"
	"time"
)

// RequestInfo identifies a request for observability hooks.
type RequestInfo struct {
	Method string
	Path   string
}

// RequestResult describes how a request finished.
type RequestResult struct {
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Hooks receives client lifecycle events. Implementations must be safe for
// concurrent use; the client never calls them while holding internal locks.
type Hooks interface {
	// OnRequestStart fires before the request is sent.
	OnRequestStart(ctx context.Context, info RequestInfo)

	// OnRequestEnd fires after a response (or transport error) for each
	// attempt, including the replay after a token refresh.
	OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult)

	// OnAuthRetry fires when a rejected request is about to be replayed
	// with a refreshed token.
	OnAuthRetry(ctx context.Context, info RequestInfo)

	// OnCancelled fires when a request is refused because a logout is in
	// progress.
	OnCancelled(ctx context.Context, info RequestInfo)
}

// NopHooks is the default no-op Hooks implementation.
type NopHooks struct{}

func (NopHooks) OnRequestStart(context.Context, RequestInfo)              {}
func (NopHooks) OnRequestEnd(context.Context, RequestInfo, RequestResult) {}
func (NopHooks) OnAuthRetry(context.Context, RequestInfo)                 {}
func (NopHooks) OnCancelled(context.Context, RequestInfo)                 {}
