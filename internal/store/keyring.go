package store

import (
	"errors"

	gokeyring "github.com/zalando/go-keyring"
)

// KeyringStore keeps values in the system keyring under ServiceName, for
// users who prefer their holdings not to sit in a plain file.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a system keyring store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: ServiceName}
}

// Get retrieves a value from the system keyring.
func (k *KeyringStore) Get(key string) (string, error) {
	v, err := gokeyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Set stores a value in the system keyring.
func (k *KeyringStore) Set(key, value string) error {
	return gokeyring.Set(k.service, key, value)
}

// Delete removes a value from the system keyring.
func (k *KeyringStore) Delete(key string) error {
	err := gokeyring.Delete(k.service, key)
	if err != nil && errors.Is(err, gokeyring.ErrNotFound) {
		return nil // Deleting non-existent key is not an error
	}
	return err
}
