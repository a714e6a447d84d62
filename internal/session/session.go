// Package session owns the authenticated session: credential persistence,
// token refresh, login/logout, and startup hydration. It talks to the
// /auth/* endpoints with its own HTTP client so the general API client can
// depend on it without a cycle.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/glambook/glambook-cli/internal/config"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
	"github.com/glambook/glambook-cli/internal/secrets"
	"github.com/glambook/glambook-cli/internal/version"
)

// Credentials is a login input.
type Credentials struct {
	Email    string
	Password string
}

// RegisterInput is a signup input. Owner accounts additionally carry the
// business name for the initial listing.
type RegisterInput struct {
	FullName     string
	Email        string
	Password     string
	Phone        string
	Owner        bool
	BusinessName string
}

// Manager holds the session state for one process.
type Manager struct {
	baseURL    string
	store      secrets.Store
	httpClient *http.Client
	gate       *Gate
	logger     *slog.Logger

	mu       sync.Mutex
	user     *models.UserProfile
	hydrated bool

	hydrateOnce sync.Once

	rc refreshCoordinator
}

// NewManager creates a session manager backed by the given secret store.
func NewManager(cfg *config.Config, store secrets.Store) *Manager {
	return &Manager{
		baseURL:    cfg.BaseURL,
		store:      store,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		gate:       NewGate(),
		logger:     slog.Default(),
	}
}

// SetHTTPClient replaces the client used for auth endpoints. Mainly for tests.
func (m *Manager) SetHTTPClient(c *http.Client) {
	m.httpClient = c
}

// SetLogger replaces the manager's logger.
func (m *Manager) SetLogger(l *slog.Logger) {
	m.logger = l
}

// Gate returns the logout gate shared with the API client.
func (m *Manager) Gate() *Gate {
	return m.gate
}

// LoggingOut reports whether a logout is in progress.
func (m *Manager) LoggingOut() bool {
	return m.gate.Active()
}

// Current returns the hydrated user, if any.
func (m *Manager) Current() (*models.UserProfile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.user != nil
}

// Hydrated reports whether startup hydration has completed.
func (m *Manager) Hydrated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hydrated
}

// Login authenticates with the backend. When expectedRole is non-empty and
// the account's role differs, nothing is persisted and the server-issued
// token pair is dropped: the user sees the mismatch, not a half-logged-in
// state under the wrong account type.
func (m *Manager) Login(ctx context.Context, creds Credentials, expectedRole models.Role) (*models.UserProfile, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	raw, status, err := m.doAuth(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, output.FromStatus(status, serverMessage(raw))
	}

	res, err := decodeAuthResponse(raw)
	if err != nil {
		return nil, err
	}
	if expectedRole != "" && res.User.Role != expectedRole {
		m.logger.Debug("login role mismatch", "expected", expectedRole, "actual", res.User.Role)
		return nil, output.ErrRoleMismatch(string(expectedRole), string(res.User.Role))
	}

	if err := m.persistPair(res.AccessToken, res.RefreshToken); err != nil {
		return nil, err
	}
	m.setUser(res.User)
	m.logger.Debug("login ok", "user", res.User.Email, "role", res.User.Role)
	return res.User, nil
}

// Register creates an account and logs it in. The backend issues a token
// pair on signup, so the response is handled exactly like a login response.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*models.UserProfile, error) {
	path := "/auth/register-user"
	body := map[string]string{
		"fullName": in.FullName,
		"email":    in.Email,
		"password": in.Password,
		"phone":    in.Phone,
	}
	if in.Owner {
		path = "/auth/register-owner"
		body["businessName"] = in.BusinessName
	}

	raw, status, err := m.doAuth(ctx, http.MethodPost, path, body, false)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, output.FromStatus(status, serverMessage(raw))
	}

	res, err := decodeAuthResponse(raw)
	if err != nil {
		return nil, err
	}
	if err := m.persistPair(res.AccessToken, res.RefreshToken); err != nil {
		return nil, err
	}
	m.setUser(res.User)
	return res.User, nil
}

// Logout tears the session down. The remote call is best-effort: local
// credentials are cleared whether or not the server acknowledges, so Logout
// never returns a server error. Concurrent calls coalesce onto the first
// one's teardown.
func (m *Manager) Logout(ctx context.Context) error {
	first, done := m.gate.Begin()
	if !first {
		m.logger.Debug("logout already in progress, waiting")
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.logger.Debug("logout start")
	if raw, status, err := m.doAuth(ctx, http.MethodPost, "/auth/logout", nil, true); err != nil {
		m.logger.Debug("remote logout failed", "error", err)
	} else if status >= 400 {
		m.logger.Debug("remote logout rejected", "status", status, "message", serverMessage(raw))
	}

	// Clear before releasing the gate: waiters must not resume against
	// credentials that are about to disappear.
	m.clearLocal()
	m.gate.End()
	m.logger.Debug("logout done")
	return nil
}

// Hydrate restores the session at process start. It always completes: a
// missing or invalid credential pair leaves the manager hydrated and logged
// out rather than wedged. Safe to call from any number of goroutines; the
// profile is fetched once, later and concurrent callers wait for it.
func (m *Manager) Hydrate(ctx context.Context) {
	m.hydrateOnce.Do(func() {
		defer m.markHydrated()

		if _, ok := m.store.Get(secrets.KeyAccessToken); !ok {
			m.logger.Debug("hydrate: no stored credentials")
			return
		}

		user, err := m.fetchMe(ctx)
		if err != nil {
			m.logger.Debug("hydrate failed, clearing credentials", "error", err)
			m.clearLocal()
			return
		}
		m.setUser(user)
		m.logger.Debug("hydrate ok", "user", user.Email)
	})
}

// fetchMe loads the current profile. An expired access token gets one
// refresh-and-retry before the attempt is abandoned.
func (m *Manager) fetchMe(ctx context.Context) (*models.UserProfile, error) {
	raw, status, err := m.doAuth(ctx, http.MethodGet, "/auth/me", nil, true)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		if err := m.Refresh(ctx); err != nil {
			return nil, err
		}
		raw, status, err = m.doAuth(ctx, http.MethodGet, "/auth/me", nil, true)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, output.FromStatus(status, serverMessage(raw))
	}

	var user models.UserProfile
	if err := json.Unmarshal(unwrapData(raw), &user); err != nil {
		return nil, output.ErrServer(status, "Malformed profile response")
	}
	user.Role = models.NormalizeRole(string(user.Role))
	return &user, nil
}

func (m *Manager) setUser(u *models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
}

func (m *Manager) markHydrated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hydrated = true
}

// clearLocal removes the credential pair and the in-memory user. Delete
// failures are logged, not propagated: teardown keeps going.
func (m *Manager) clearLocal() {
	if err := m.store.Delete(secrets.KeyAccessToken); err != nil {
		m.logger.Debug("clearing access token failed", "error", err)
	}
	if err := m.store.Delete(secrets.KeyRefreshToken); err != nil {
		m.logger.Debug("clearing refresh token failed", "error", err)
	}
	m.setUser(nil)
}

// persistPair stores the access token before the refresh token so an
// interruption leaves at worst a usable access token, never a refresh token
// without its counterpart's session.
func (m *Manager) persistPair(access, refresh string) error {
	if access == "" {
		return output.ErrServer(0, "Auth response missing access token")
	}
	if err := m.store.Set(secrets.KeyAccessToken, access); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}
	if refresh != "" {
		if err := m.store.Set(secrets.KeyRefreshToken, refresh); err != nil {
			return fmt.Errorf("storing refresh token: %w", err)
		}
	}
	return nil
}

// doAuth performs one request against an auth endpoint and returns the raw
// body and status. Transport failures map to the network error code.
func (m *Manager) doAuth(ctx context.Context, method, path string, body any, attachToken bool) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if attachToken {
		if token, ok := m.store.Get(secrets.KeyAccessToken); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, output.ErrCancelled("Request cancelled")
		}
		return nil, 0, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, output.ErrNetwork(err)
	}
	return raw, resp.StatusCode, nil
}

// authResult is a normalized auth response.
type authResult struct {
	User         *models.UserProfile
	AccessToken  string
	RefreshToken string
}

// decodeAuthResponse normalizes the backend's auth payloads. Some endpoints
// wrap the payload in a data envelope, some wrap it twice; unwrap until the
// user and token fields surface.
func decodeAuthResponse(raw []byte) (*authResult, error) {
	raw = unwrapData(unwrapData(raw))

	var payload struct {
		User         *models.UserProfile `json:"user"`
		AccessToken  string              `json:"accessToken"`
		RefreshToken string              `json:"refreshToken"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.User == nil || payload.AccessToken == "" {
		return nil, output.ErrServer(0, "Malformed auth response")
	}
	payload.User.Role = models.NormalizeRole(string(payload.User.Role))
	return &authResult{
		User:         payload.User,
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}

// unwrapData peels one data envelope off a JSON body, returning the input
// unchanged when there is none.
func unwrapData(raw []byte) []byte {
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
