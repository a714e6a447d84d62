package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		serverMsg string
		wantCode  string
		wantMsg   string
	}{
		{"unauthorized", 401, "", CodeAuth, "Authentication required. Please log in again."},
		{"forbidden", 403, "", CodeForbidden, "You do not have permission to perform this action"},
		{"not found", 404, "business not found", CodeNotFound, "business not found"},
		{"conflict passes message through", 409, "time slot already booked", CodeConflict, "time slot already booked"},
		{"conflict fallback", 409, "", CodeConflict, "This resource is no longer available"},
		{"validation passes message through", 422, "rating must be 1-5", CodeValidation, "rating must be 1-5"},
		{"rate limit", 429, "slow down", CodeRateLimit, "Rate limited"},
		{"server error passes message through", 500, "db connection lost", CodeServer, "db connection lost"},
		{"server error fallback", 503, "", CodeServer, "Server error (503)"},
		{"unmapped status", 418, "", CodeServer, "Request failed with status 418"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromStatus(tt.status, tt.serverMsg)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.status, e.HTTPStatus)
		})
	}
}

func TestFromStatusRateLimitNeverAuth(t *testing.T) {
	// 429 must never be classified as an auth error
	e := FromStatus(http.StatusTooManyRequests, "")
	assert.Equal(t, CodeRateLimit, e.Code)
	assert.True(t, e.Retryable)
}

func TestErrRoleMismatch(t *testing.T) {
	e := ErrRoleMismatch("OWNER", "USER")
	assert.Equal(t, CodeRoleMismatch, e.Code)
	assert.Equal(t, "OWNER", e.ExpectedRole)
	assert.Equal(t, "USER", e.ActualRole)
	assert.Contains(t, e.Message, "USER")
	assert.Contains(t, e.Message, "OWNER")
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		code string
		exit int
	}{
		{CodeUsage, ExitUsage},
		{CodeNotFound, ExitNotFound},
		{CodeAuth, ExitAuth},
		{CodeForbidden, ExitForbidden},
		{CodeRateLimit, ExitRateLimit},
		{CodeNetwork, ExitNetwork},
		{CodeServer, ExitServer},
		{CodeConflict, ExitConflict},
		{CodeValidation, ExitValidation},
		{CodeCancelled, ExitCancelled},
		{CodeRoleMismatch, ExitRoleMismatch},
		{"something_else", ExitServer},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.exit, ExitCodeFor(tt.code))
		})
	}
}

func TestErrorMessageWithHint(t *testing.T) {
	e := ErrUsageHint("No business specified", "Use --business or gbk businesses")
	assert.Equal(t, "No business specified: Use --business or gbk businesses", e.Error())

	plain := ErrUsage("Bad flag")
	assert.Equal(t, "Bad flag", plain.Error())
}

func TestErrNetworkWrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	e := ErrNetwork(cause)
	assert.Equal(t, CodeNetwork, e.Code)
	assert.True(t, e.Retryable)
	assert.ErrorIs(t, e, cause)
}

func TestAsError(t *testing.T) {
	typed := ErrAuth("Not authenticated")
	assert.Same(t, typed, AsError(typed))

	wrapped := fmt.Errorf("context: %w", typed)
	assert.Same(t, typed, AsError(wrapped))

	plain := errors.New("something broke")
	e := AsError(plain)
	assert.Equal(t, CodeServer, e.Code)
	assert.Equal(t, "something broke", e.Message)
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrCancelled("logout in progress"))
	assert.True(t, IsCode(err, CodeCancelled))
	assert.False(t, IsCode(err, CodeAuth))
	assert.False(t, IsCode(errors.New("plain"), CodeCancelled))
}

func TestWriterJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.OK(map[string]any{"id": "b1"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "b1", data["id"])
}

func TestWriterQuietOmitsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf})

	require.NoError(t, w.OK(map[string]any{"id": "b1"}))

	var data map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "b1", data["id"])
	assert.NotContains(t, data, "ok")
}

func TestWriterErrEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.Err(ErrAuth("Not authenticated")))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, CodeAuth, resp.Code)
	assert.Equal(t, "Not authenticated", resp.Error)
	assert.NotEmpty(t, resp.Hint)
}

func TestWriterJQFilter(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf, JQ: ".[].name"})

	items := []map[string]any{
		{"name": "Shear Genius", "rating": 4.8},
		{"name": "Polish Parlour", "rating": 4.5},
	}
	require.NoError(t, w.OK(items))

	var names []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &names))
	assert.Equal(t, []string{"Shear Genius", "Polish Parlour"}, names)
}

func TestWriterJQSingleResult(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf, JQ: ".name"})

	require.NoError(t, w.OK(map[string]any{"name": "Shear Genius"}))

	var name string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &name))
	assert.Equal(t, "Shear Genius", name)
}

func TestWriterJQInvalidExpression(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf, JQ: ".[unclosed"})

	err := w.OK(map[string]any{"id": 1})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeUsage))
}
