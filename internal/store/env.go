package store

import (
	"encoding/json"
	"os"
	"strings"
)

// EnvStore wraps another Store and checks environment variables first.
// Writes always go to the underlying store.
type EnvStore struct {
	underlying Store
	getenv     func(string) string
}

// NewEnvStore creates a new EnvStore wrapping the given store.
func NewEnvStore(underlying Store) *EnvStore {
	return &EnvStore{underlying: underlying, getenv: os.Getenv}
}

// Get returns the DASH_WATCHLIST override for the watchlist key, otherwise
// the underlying value.
func (e *EnvStore) Get(key string) (string, error) {
	if key == KeyWatchlist {
		if envVal := strings.TrimSpace(e.getenv(EnvWatchlist)); envVal != "" {
			if strings.HasPrefix(envVal, "[") {
				return envVal, nil
			}
			encoded, err := json.Marshal(strings.Split(envVal, ","))
			if err != nil {
				return "", err
			}
			return string(encoded), nil
		}
	}
	return e.underlying.Get(key)
}

// Set stores a value in the underlying store.
func (e *EnvStore) Set(key, value string) error {
	return e.underlying.Set(key, value)
}

// Delete removes a value from the underlying store.
func (e *EnvStore) Delete(key string) error {
	return e.underlying.Delete(key)
}

// Underlying returns the wrapped store.
func (e *EnvStore) Underlying() Store {
	return e.underlying
}
