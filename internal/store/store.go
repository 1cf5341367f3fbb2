// Package store persists dashboard state (watchlist, portfolio lots) as
// JSON-encoded values in a key-value store.
package store

import (
	"errors"
	"fmt"
)

const (
	// ServiceName namespaces entries in the system keyring.
	ServiceName = "com.apollo67.dash"

	// KeyWatchlist holds the JSON array of watchlist symbols.
	KeyWatchlist = "apollo67.watchlist"

	// KeyPortfolio holds the JSON array of portfolio lots.
	KeyPortfolio = "apollo67.portfolio"

	// EnvWatchlist, when set, overrides the stored watchlist. It accepts
	// either a JSON array or a comma separated list.
	EnvWatchlist = "DASH_WATCHLIST"
)

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store provides string values by key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Open returns the store for backend, wrapped so environment overrides
// take precedence. path is only used by the file backend.
func Open(backend, path string) (Store, error) {
	var s Store
	switch backend {
	case "", BackendFile:
		s = NewFileStore(path)
	case BackendKeyring:
		s = NewKeyringStore()
	case BackendMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use file, keyring or memory)", backend)
	}
	return NewEnvStore(s), nil
}
