package secrets

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Set(KeyAccessToken, "at-1"))
	require.NoError(t, store.Set(KeyRefreshToken, "rt-1"))

	v, ok := store.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "at-1", v)

	v, ok = store.Get(KeyRefreshToken)
	require.True(t, ok)
	assert.Equal(t, "rt-1", v)
}

func TestFileStoreMissingKey(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, ok := store.Get(KeyAccessToken)
	assert.False(t, ok)
}

func TestFileStoreDelete(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Set(KeyAccessToken, "at-1"))
	require.NoError(t, store.Delete(KeyAccessToken))

	_, ok := store.Get(KeyAccessToken)
	assert.False(t, ok)

	// Deleting an absent key is not an error
	require.NoError(t, store.Delete(KeyAccessToken))
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, store.Set(KeyAccessToken, "at-1"))

	info, err := os.Stat(filepath.Join(dir, secretsFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Set(KeyAccessToken, "old"))
	require.NoError(t, store.Set(KeyAccessToken, "new"))

	v, ok := store.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestFileStoreCorruptFileReadAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, secretsFileName), []byte("not json"), 0600))

	_, ok := store.Get(KeyAccessToken)
	assert.False(t, ok)
}

func TestFileStoreConcurrentWrites(t *testing.T) {
	store := NewFileStore(t.TempDir())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(KeyAccessToken, "at")
			_ = store.Set(KeyRefreshToken, "rt")
		}()
	}
	wg.Wait()

	v, ok := store.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "at", v)
	v, ok = store.Get(KeyRefreshToken)
	require.True(t, ok)
	assert.Equal(t, "rt", v)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Set(KeyAccessToken, "at-1"))
	v, ok := store.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "at-1", v)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(KeyAccessToken))
	_, ok = store.Get(KeyAccessToken)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreFailSets(t *testing.T) {
	store := NewMemoryStore()
	store.FailSets = assert.AnError

	require.Error(t, store.Set(KeyAccessToken, "at-1"))
	_, ok := store.Get(KeyAccessToken)
	assert.False(t, ok)
}

func TestNewFallsBackToFile(t *testing.T) {
	t.Setenv("GLAMBOOK_NO_KEYRING", "1")

	store := New(t.TempDir())
	_, isFile := store.(*FileStore)
	assert.True(t, isFile, "expected file store when keyring is disabled")
}
