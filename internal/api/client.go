// Package api provides the authenticated HTTP client for the Glambook API.
// It attaches the stored access token, unwraps the backend's data envelope,
// maps error statuses onto the error taxonomy, and transparently retries a
// rejected request once after refreshing the session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/glambook/glambook-cli/internal/config"
	"github.com/glambook/glambook-cli/internal/output"
	"github.com/glambook/glambook-cli/internal/secrets"
	"github.com/glambook/glambook-cli/internal/session"
	"github.com/glambook/glambook-cli/internal/version"
)

// Client is the API client. Create one with NewClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      secrets.Store
	session    *session.Manager
	hooks      Hooks
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHooks attaches observability hooks.
func WithHooks(h Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithHTTPClient replaces the underlying HTTP client. Mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(l *slog.Logger) {
	c.logger = l
}

// NewClient creates a client bound to the given session manager.
func NewClient(cfg *config.Config, store secrets.Store, sess *session.Manager, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.BaseURL,
		store:      store,
		session:    sess,
		hooks:      NopHooks{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is a successful API response with the envelope already removed.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Header     http.Header
}

// UnmarshalData decodes the response payload into v.
func (r *Response) UnmarshalData(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, false)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, false)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body, false)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, false)
}

// do performs one request, classifying errors and driving the single
// refresh-and-replay cycle. isRetry marks the replay so a second rejection
// surfaces instead of looping.
func (c *Client) do(ctx context.Context, method, path string, body any, isRetry bool) (*Response, error) {
	info := RequestInfo{Method: method, Path: path}

	// Fail fast while a logout tears the session down. Queuing here would
	// replay the request against credentials that are about to be deleted.
	if c.session.LoggingOut() {
		c.hooks.OnCancelled(ctx, info)
		c.logger.Debug("request refused, logout in progress", "method", method, "path", path)
		return nil, output.ErrCancelled("Request cancelled: logout in progress")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.store.Get(secrets.KeyAccessToken); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.hooks.OnRequestStart(ctx, info)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.hooks.OnRequestEnd(ctx, info, RequestResult{Duration: time.Since(start), Err: err})
		if ctx.Err() != nil {
			return nil, output.ErrCancelled("Request cancelled")
		}
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.hooks.OnRequestEnd(ctx, info, RequestResult{StatusCode: resp.StatusCode, Duration: time.Since(start), Err: err})
		return nil, output.ErrNetwork(err)
	}
	c.hooks.OnRequestEnd(ctx, info, RequestResult{StatusCode: resp.StatusCode, Duration: time.Since(start)})
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "retry", isRetry)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &Response{
			Data:       unwrapData(raw),
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
		}, nil

	// Rate limiting is not an auth problem. Classified before the 401/403
	// branch so it never consumes the refresh cycle or ends the session.
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, output.ErrRateLimit(parseRetryAfter(resp.Header))

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if isRetry || c.session.LoggingOut() {
			return nil, output.FromStatus(resp.StatusCode, serverMessage(raw))
		}
		if err := c.session.Refresh(ctx); err != nil {
			// Refresh failure already ended the session; surface it.
			return nil, err
		}
		c.hooks.OnAuthRetry(ctx, info)
		c.logger.Debug("replaying after refresh", "method", method, "path", path)
		return c.do(ctx, method, path, body, true)

	default:
		return nil, output.FromStatus(resp.StatusCode, serverMessage(raw))
	}
}

// unwrapData peels the backend's data envelope off a response body,
// returning the body unchanged when there is none.
func unwrapData(raw []byte) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}

// serverMessage extracts the human-readable message from an error body.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// parseRetryAfter reads a Retry-After header expressed in seconds.
func parseRetryAfter(h http.Header) int {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}
