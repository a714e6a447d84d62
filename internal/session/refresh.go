package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/glambook/glambook-cli/internal/output"
	"github.com/glambook/glambook-cli/internal/secrets"
)

// refreshCoordinator deduplicates concurrent refresh attempts. The first
// caller performs the exchange; everyone arriving while it is in flight is
// queued and resolved with the same outcome, in arrival order.
type refreshCoordinator struct {
	mu       sync.Mutex
	inFlight bool
	waiters  []chan error
}

// Refresh exchanges the stored refresh token for a new credential pair. At
// most one exchange runs at a time; concurrent callers share its result. On
// success the new pair is persisted before any waiter resumes, so a retried
// request always reads the fresh token. Every failure surfaces as an
// auth-required error and triggers a single logout after the waiters have
// been resolved.
func (m *Manager) Refresh(ctx context.Context) error {
	m.rc.mu.Lock()
	if m.rc.inFlight {
		ch := make(chan error, 1)
		m.rc.waiters = append(m.rc.waiters, ch)
		m.rc.mu.Unlock()
		m.logger.Debug("refresh in flight, queued")
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.rc.inFlight = true
	m.rc.mu.Unlock()

	err := m.doRefresh(ctx)

	m.rc.mu.Lock()
	waiters := m.rc.waiters
	m.rc.waiters = nil
	m.rc.inFlight = false
	m.rc.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}

	if err != nil {
		m.logger.Debug("refresh failed, logging out", "error", err)
		// Logout coalesces, so a failure racing an in-progress logout
		// does not start a second teardown.
		_ = m.Logout(ctx)
	}
	return err
}

// doRefresh performs the token exchange. Any failure — missing token,
// transport error, server rejection, malformed payload, persistence — is
// collapsed into the auth-required code; the caller cannot act on the
// distinction, only on "the session is gone".
func (m *Manager) doRefresh(ctx context.Context) error {
	refreshToken, ok := m.store.Get(secrets.KeyRefreshToken)
	if !ok {
		return output.ErrAuth("No refresh token available")
	}

	body := map[string]string{"refreshToken": refreshToken}
	raw, status, err := m.doAuth(ctx, http.MethodPost, "/auth/refresh", body, false)
	if err != nil {
		return authFailure(err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		m.logger.Debug("refresh rejected", "status", status)
		return output.ErrAuth("Session expired. Please log in again.")
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(unwrapData(unwrapData(raw)), &payload); err != nil || payload.AccessToken == "" {
		return output.ErrAuth("Session expired. Please log in again.")
	}

	// Access token first; the refresh token may be rotated or kept.
	if err := m.store.Set(secrets.KeyAccessToken, payload.AccessToken); err != nil {
		return authFailure(err)
	}
	if payload.RefreshToken != "" {
		if err := m.store.Set(secrets.KeyRefreshToken, payload.RefreshToken); err != nil {
			return authFailure(err)
		}
	}

	m.logger.Debug("refresh ok", "rotated", payload.RefreshToken != "")
	return nil
}

// authFailure wraps an underlying refresh failure in the auth-required code,
// keeping the cause for debug logs.
func authFailure(cause error) *output.Error {
	e := output.ErrAuth("Session refresh failed")
	e.Cause = cause
	return e
}
