package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-training/deezer-connect/pkg/core"
)

var (
	// ErrLoginNotFound is returned when a pending login is unknown or expired.
	ErrLoginNotFound = errors.New("pending login not found")
	// ErrNilLogin is returned when attempting to save a nil pending login.
	ErrNilLogin = errors.New("pending login cannot be nil")
	// ErrEmptyState is returned when the state string is empty.
	ErrEmptyState = errors.New("login state cannot be empty")
	// ErrLoginExpired is returned when saving a login that is already past its deadline.
	ErrLoginExpired = errors.New("pending login is already expired")
)

// MemoryStore implements core.LoginStore with an in-memory map.
// It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	logins map[string]*core.PendingLogin
	now    func() time.Time
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logins: make(map[string]*core.PendingLogin),
		now:    time.Now,
	}
}

// SaveLogin stores a pending login under its state.
func (m *MemoryStore) SaveLogin(ctx context.Context, login *core.PendingLogin) error {
	if login == nil {
		return ErrNilLogin
	}
	if login.State == "" {
		return ErrEmptyState
	}
	if login.Expired(m.now()) {
		return ErrLoginExpired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeExpired()
	m.logins[login.State] = login
	return nil
}

// GetLogin returns the pending login for state.
// Expired logins are reported as ErrLoginNotFound.
func (m *MemoryStore) GetLogin(ctx context.Context, state string) (*core.PendingLogin, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	login, exists := m.logins[state]
	if !exists || login.Expired(m.now()) {
		return nil, ErrLoginNotFound
	}
	return login, nil
}

// DeleteLogin removes the pending login for state.
func (m *MemoryStore) DeleteLogin(ctx context.Context, state string) error {
	if state == "" {
		return ErrEmptyState
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.logins[state]; !exists {
		return ErrLoginNotFound
	}
	delete(m.logins, state)
	return nil
}

// TakeLogin returns and removes the pending login for state.
func (m *MemoryStore) TakeLogin(ctx context.Context, state string) (*core.PendingLogin, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	login, exists := m.logins[state]
	if !exists {
		return nil, ErrLoginNotFound
	}
	delete(m.logins, state)
	if login.Expired(m.now()) {
		return nil, ErrLoginNotFound
	}
	return login, nil
}

// Len returns the number of logins held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logins)
}

// purgeExpired drops expired logins. Callers hold the write lock.
func (m *MemoryStore) purgeExpired() {
	now := m.now()
	for state, login := range m.logins {
		if login.Expired(now) {
			delete(m.logins, state)
		}
	}
}
