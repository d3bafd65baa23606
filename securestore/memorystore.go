// securestore/memorystore.go
package securestore

import "sync"

// MemoryStore is a thread-safe in-memory Store. It is the default backend for tests and
// for short-lived processes that do not need secrets to survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryStore creates an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		secrets: make(map[string]string),
	}
}

var _ Store = (*MemoryStore)(nil)

// Save stores the value under the key, replacing any previous value.
func (s *MemoryStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[key] = value
	return nil
}

// Load returns the value stored under the key. The second return value is false when the
// key is absent.
func (s *MemoryStore) Load(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.secrets[key]
	return value, ok, nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, key)
	return nil
}

// ResetAll removes every stored secret.
func (s *MemoryStore) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets = make(map[string]string)
	return nil
}
