package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glambook/glambook-cli/internal/output"
	"github.com/glambook/glambook-cli/internal/secrets"
)

func TestRefreshRotatesPair(t *testing.T) {
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		fmt.Fprint(w, `{"accessToken": "at-2", "refreshToken": "rt-2"}`)
	}))
	require.NoError(t, store.Set(secrets.KeyAccessToken, "at-1"))
	require.NoError(t, store.Set(secrets.KeyRefreshToken, "rt-1"))

	require.NoError(t, m.Refresh(context.Background()))

	at, _ := store.Get(secrets.KeyAccessToken)
	assert.Equal(t, "at-2", at)
	rt, _ := store.Get(secrets.KeyRefreshToken)
	assert.Equal(t, "rt-2", rt)
}

func TestRefreshKeepsUnrotatedRefreshToken(t *testing.T) {
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": {"accessToken": "at-2"}}`)
	}))
	require.NoError(t, store.Set(secrets.KeyRefreshToken, "rt-1"))

	require.NoError(t, m.Refresh(context.Background()))

	rt, _ := store.Get(secrets.KeyRefreshToken)
	assert.Equal(t, "rt-1", rt, "server did not rotate the refresh token")
}

func TestRefreshWithoutTokenFailsFast(t *testing.T) {
	var calls atomic.Int32
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			calls.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := m.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, output.IsCode(err, output.CodeAuth))
	assert.Equal(t, int32(0), calls.Load(), "no exchange without a refresh token")
	assert.Equal(t, 0, store.Len())
}

func TestRefreshConcurrentCallersShareOneExchange(t *testing.T) {
	var refreshCalls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		if refreshCalls.Add(1) == 1 {
			close(entered)
			<-release
		}
		fmt.Fprint(w, `{"accessToken": "at-2", "refreshToken": "rt-2"}`)
	}))
	require.NoError(t, store.Set(secrets.KeyRefreshToken, "rt-1"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, m.Refresh(context.Background()))
	}()
	<-entered

	// The exchange is in flight; everyone arriving now must queue on it.
	for range 7 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Refresh(context.Background())
			assert.NoError(t, err)
			// The new pair is persisted before any waiter resumes.
			at, ok := store.Get(secrets.KeyAccessToken)
			assert.True(t, ok)
			assert.Equal(t, "at-2", at)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), refreshCalls.Load(), "one exchange serves the whole burst")
}

func TestRefreshFailureFansOutAuthErrorAndLogsOutOnce(t *testing.T) {
	var refreshCalls, logoutCalls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			if refreshCalls.Add(1) == 1 {
				close(entered)
				<-release
			}
			w.WriteHeader(http.StatusUnauthorized)
		case "/auth/logout":
			logoutCalls.Add(1)
			w.WriteHeader(http.StatusOK)
		}
	}))
	require.NoError(t, store.Set(secrets.KeyAccessToken, "at-1"))
	require.NoError(t, store.Set(secrets.KeyRefreshToken, "rt-1"))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- m.Refresh(context.Background())
	}()
	<-entered

	for range 7 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Refresh(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.True(t, output.IsCode(err, output.CodeAuth), "every caller sees auth required")
	}
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(1), logoutCalls.Load(), "failure triggers a single logout")
	assert.Equal(t, 0, store.Len())
	assert.False(t, m.LoggingOut())
}

func TestRefreshMalformedPayloadIsAuthError(t *testing.T) {
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			fmt.Fprint(w, `{"unexpected": true}`)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	require.NoError(t, store.Set(secrets.KeyRefreshToken, "rt-1"))

	err := m.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, output.IsCode(err, output.CodeAuth))
}

func TestRefreshStoreFailureIsAuthError(t *testing.T) {
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			fmt.Fprint(w, `{"accessToken": "at-2"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	require.NoError(t, store.Set(secrets.KeyRefreshToken, "rt-1"))
	store.FailSets = assert.AnError

	err := m.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, output.IsCode(err, output.CodeAuth))
	assert.ErrorIs(t, err, assert.AnError, "cause is preserved for debugging")
}

func TestRefreshSequentialCallsEachExchange(t *testing.T) {
	var calls atomic.Int32
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"accessToken": "at-%d", "refreshToken": "rt-%d"}`, n+1, n+1)
	}))
	require.NoError(t, store.Set(secrets.KeyRefreshToken, "rt-1"))

	require.NoError(t, m.Refresh(context.Background()))
	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, int32(2), calls.Load(), "dedup applies to overlapping calls only")

	at, _ := store.Get(secrets.KeyAccessToken)
	assert.Equal(t, "at-3", at)
}
