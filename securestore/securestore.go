// securestore/securestore.go
/* The securestore package defines the durable key/value contract used to hold the two
session secrets (access and refresh tokens) between application launches, together with an
in-memory implementation for tests and an encrypted file-backed implementation for hosts
without an OS keychain integration. Platform keychain backends satisfy the same Store
interface and plug in from outside this module. */
package securestore

import "fmt"

// Well-known keys under which the session secrets are stored.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Store is durable key/value storage for string secrets. Implementations must be safe for
// concurrent use. A missing key is not an error: Load reports it through its second return
// value, and errors are reserved for I/O failures.
type Store interface {
	Save(key, value string) error
	Load(key string) (string, bool, error)
	Delete(key string) error
	ResetAll() error
}

// StorageError wraps an I/O failure from a Store implementation, carrying the operation
// and key for diagnostics. Values never appear in the error text.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("securestore: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("securestore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
