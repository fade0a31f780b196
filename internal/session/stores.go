package session

import (
	"context"
	"sync"

	"github.com/newsox/newsox/internal/models"
)

// API is the slice of the backend the session talks to.
// An empty token means "rely on cookies only".
type API interface {
	MemberInfo(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

// TokenStore persists the bearer token for one session.
// LoadToken returns an empty string and no error when nothing is stored.
type TokenStore interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	DeleteToken() error
}

// SnapshotStore persists the last known user so it can be shown before the
// first revalidation finishes. LoadUser returns nil, nil when empty.
type SnapshotStore interface {
	SaveUser(user *models.User) error
	LoadUser() (*models.User, error)
	DeleteUser() error
}

// Notifier surfaces a message to the person using the application
type Notifier interface {
	Notify(message string)
}

// Navigator performs a hard navigation back to the application root,
// discarding anything rendered for the previous identity.
type Navigator interface {
	NavigateRoot()
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func()

func (f NavigatorFunc) NavigateRoot() { f() }

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopNavigator struct{}

func (nopNavigator) NavigateRoot() {}

// MemoryTokenStore keeps the token for the lifetime of the process
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore creates an empty in-process token store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) LoadToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokenStore) DeleteToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// MemorySnapshotStore keeps a copy of the last saved user
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	user *models.User
}

// NewMemorySnapshotStore creates an empty in-process snapshot store
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

func (m *MemorySnapshotStore) SaveUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = cloneUser(user)
	return nil
}

func (m *MemorySnapshotStore) LoadUser() (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user), nil
}

func (m *MemorySnapshotStore) DeleteUser() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}
