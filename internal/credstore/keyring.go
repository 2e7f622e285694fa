package credstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "jobadmin"

// KeyringStore persists the credential in the OS keychain/credential manager
type KeyringStore struct {
	service string
	key     string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService, key: ReservedKey}
}

func (k *KeyringStore) Save(token string) error {
	if err := keyring.Set(k.service, k.key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(k.service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (k *KeyringStore) Clear() error {
	if err := keyring.Delete(k.service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
