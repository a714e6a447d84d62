package secrets

import "sync"

// MemoryStore is an in-memory store for tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string

	// FailSets, when non-nil, is returned from every Set call. Lets tests
	// exercise the incomplete-pair path.
	FailSets error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get retrieves a secret.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok && v != ""
}

// Set stores a secret.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSets != nil {
		return s.FailSets
	}
	s.data[key] = value
	return nil
}

// Delete removes a secret.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len reports the number of stored secrets.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
