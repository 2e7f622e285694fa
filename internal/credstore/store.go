// Package credstore persists the console's session credential across restarts.
//
// Every backend keeps at most one credential under the reserved key
// ReservedKey. Clearing an empty store is not an error.
package credstore

import (
	"errors"
	"fmt"
	"sync"
)

// ReservedKey is the application-reserved name the credential is stored under
const ReservedKey = "jobadmin.token"

// ErrNotFound is returned by Load when no credential is persisted
var ErrNotFound = errors.New("no credential stored")

// Store defines the credential persistence operations.
// This allows the session to run against the OS keychain, a file, SQLite or memory.
type Store interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

// Open builds the store selected by kind ("file", "sqlite", "keyring", "memory")
func Open(kind, path string) (Store, error) {
	switch kind {
	case "file":
		return NewFileStore(path), nil
	case "sqlite":
		return OpenSQLiteStore(path)
	case "keyring":
		return NewKeyringStore(), nil
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", kind)
	}
}

// MemoryStore keeps the credential for the lifetime of the process only
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
