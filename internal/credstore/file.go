package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the credential in a JSON document, e.g. ~/.config/jobadmin/credentials.json
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the credentials file
func (f *FileStore) Path() string {
	return f.path
}

// Save overwrites any persisted credential
func (f *FileStore) Save(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		// Corrupt file: start over rather than refuse to log in
		doc = map[string]string{}
	}
	doc[ReservedKey] = token

	return f.write(doc)
}

// Load returns the persisted credential or ErrNotFound
func (f *FileStore) Load() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return "", err
	}

	token := doc[ReservedKey]
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Clear removes the persisted credential
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		// Nothing readable to keep
		if removeErr := os.Remove(f.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return fmt.Errorf("failed to remove credentials file: %w", removeErr)
		}
		return nil
	}

	if _, ok := doc[ReservedKey]; !ok {
		return nil
	}
	delete(doc, ReservedKey)

	return f.write(doc)
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return doc, nil
}

func (f *FileStore) write(doc map[string]string) error {
	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}
