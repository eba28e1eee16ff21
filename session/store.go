// Package session holds the bearer credential used by the AccessMatic SDK
// and persists it across process restarts on the local device.
package session

import (
	"context"
	"errors"
	"sync"
)

// DefaultKey is the storage key the credential is persisted under.
const DefaultKey = "accessmatic_token" // #nosec G101 -- storage key name, not a credential

// ErrEmptyToken is returned by Set when the credential is empty.
var ErrEmptyToken = errors.New("session: token must not be empty")

// Backend persists a single credential value on the local device.
//
// Load reports ok=false when nothing is stored. Delete must succeed when
// nothing is stored.
type Backend interface {
	Load(ctx context.Context) (token string, ok bool, err error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Store is the process-wide holder of the current bearer credential.
type Store struct {
	backend Backend

	mu    sync.RWMutex
	token string
}

// Open creates a Store and loads any previously persisted credential.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{backend: backend}
	token, ok, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		s.token = token
	}
	return s, nil
}

// NewMemoryStore returns a Store that forgets its credential on exit.
func NewMemoryStore() *Store {
	return &Store{backend: NewMemoryBackend()}
}

// Get returns the current credential, if any.
func (s *Store) Get() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set persists token byte-for-byte and then makes it the current credential.
// When persistence fails the previous credential stays in effect.
func (s *Store) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Save(ctx, token); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Clear removes the credential from memory and from the backend. Clearing an
// empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx); err != nil {
		return err
	}
	s.token = ""
	return nil
}

// MemoryBackend keeps the credential in process memory only.
type MemoryBackend struct {
	mu    sync.Mutex
	token string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (m *MemoryBackend) Load(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

func (m *MemoryBackend) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryBackend) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
