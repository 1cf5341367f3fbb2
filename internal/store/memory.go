package store

import "sync"

// MemoryStore keeps values in memory. It can be configured to return
// errors for testing error handling.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	delErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

// Get retrieves a value.
func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores a value.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

// Delete removes a value.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}

// WithGetError configures the store to return an error on Get calls.
func (m *MemoryStore) WithGetError(err error) *MemoryStore {
	m.getErr = err
	return m
}

// WithSetError configures the store to return an error on Set calls.
func (m *MemoryStore) WithSetError(err error) *MemoryStore {
	m.setErr = err
	return m
}

// WithDeleteError configures the store to return an error on Delete calls.
func (m *MemoryStore) WithDeleteError(err error) *MemoryStore {
	m.delErr = err
	return m
}

// WithData pre-populates the store.
func (m *MemoryStore) WithData(key, value string) *MemoryStore {
	m.data[key] = value
	return m
}
