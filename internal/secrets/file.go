package secrets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofrs/flock"
)

const (
	secretsFileName = "secrets.json"
	lockFileName    = "secrets.lock"
)

// FileStore is the plaintext fallback backend. A flock guards the file so
// concurrent gbk processes don't interleave read-modify-write cycles.
type FileStore struct {
	dir  string
	lock *flock.Flock
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}
}

// Get retrieves a secret. A failed read is reported as absent.
func (s *FileStore) Get(key string) (string, bool) {
	if err := s.lock.RLock(); err != nil {
		return "", false
	}
	defer s.lock.Unlock()

	all, err := s.loadAll()
	if err != nil {
		return "", false
	}
	v, ok := all[key]
	return v, ok && v != ""
}

// Set stores a secret.
func (s *FileStore) Set(key, value string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	all, err := s.loadAll()
	if err != nil {
		all = make(map[string]string)
	}
	all[key] = value
	return s.saveAll(all)
}

// Delete removes a secret. Deleting an absent key is not an error.
func (s *FileStore) Delete(key string) error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	all, err := s.loadAll()
	if err != nil {
		return nil
	}
	if _, ok := all[key]; !ok {
		return nil
	}
	delete(all, key)
	return s.saveAll(all)
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, secretsFileName)
}

func (s *FileStore) loadAll() (map[string]string, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	var all map[string]string
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *FileStore) saveAll(all map[string]string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write with randomized temp file name
	tmpFile, err := os.CreateTemp(s.dir, "secrets-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	// Unix: rename atomically replaces the destination.
	// Windows: rename fails when destination exists; remove and retry.
	destPath := s.path()
	if err := os.Rename(tmpPath, destPath); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(destPath)
			return os.Rename(tmpPath, destPath)
		}
		os.Remove(tmpPath)
		return err
	}
	return nil
}
