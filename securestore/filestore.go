// securestore/filestore.go
package securestore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

// nonceSize is the secretbox nonce length prefixed to the ciphertext on disk.
const nonceSize = 24

// keySize is the required secretbox key length.
const KeySize = 32

// FileStore is a Store persisting secrets to a single encrypted file. The payload is a
// JSON map sealed with NaCl secretbox under a caller-supplied 32-byte key; a fresh random
// nonce is generated on every write and prefixed to the ciphertext. The file is created
// with 0600 permissions.
type FileStore struct {
	path string
	key  [KeySize]byte
	mu   sync.Mutex
}

// NewFileStore creates a FileStore writing to path using the provided encryption key.
// The key must be exactly 32 bytes.
func NewFileStore(path string, key []byte) (*FileStore, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("securestore: encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	store := &FileStore{path: path}
	copy(store.key[:], key)
	return store, nil
}

var _ Store = (*FileStore)(nil)

// Save stores the value under the key, replacing any previous value.
func (s *FileStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.read()
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	secrets[key] = value
	if err := s.write(secrets); err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	return nil
}

// Load returns the value stored under the key. The second return value is false when the
// key is absent; errors are reserved for file I/O or decryption failures.
func (s *FileStore) Load(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.read()
	if err != nil {
		return "", false, &StorageError{Op: "load", Key: key, Err: err}
	}
	value, ok := secrets[key]
	return value, ok, nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.read()
	if err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	if _, ok := secrets[key]; !ok {
		return nil
	}
	delete(secrets, key)
	if err := s.write(secrets); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// ResetAll removes the backing file entirely.
func (s *FileStore) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "reset", Err: err}
	}
	return nil
}

// read loads and decrypts the secret map. A missing file yields an empty map.
func (s *FileStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) < nonceSize {
		return nil, errors.New("stored payload shorter than nonce")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("failed to decrypt stored payload")
	}

	secrets := make(map[string]string)
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, err
	}
	return secrets, nil
}

// write encrypts and persists the secret map.
func (s *FileStore) write(secrets map[string]string) error {
	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return err
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return os.WriteFile(s.path, sealed, 0o600)
}
