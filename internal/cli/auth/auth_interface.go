package auth

import (
	"errors"
	"net/http"
	"sync"
)

// TokenStore defines the interface for credential storage operations
// This allows us to mock the keyring in tests
type TokenStore interface {
	SaveToken(server, token string) error
	LoadToken(server string) (string, error)
	DeleteToken(server string) error
	SaveCookies(server string, cookies []*http.Cookie) error
	LoadCookies(server string) ([]*http.Cookie, error)
	DeleteCookies(server string) error
}

// defaultTokenStore implements TokenStore using the OS keyring
type defaultTokenStore struct{}

var Default TokenStore = &defaultTokenStore{}

func (d *defaultTokenStore) SaveToken(server, token string) error {
	return SaveToken(server, token)
}

func (d *defaultTokenStore) LoadToken(server string) (string, error) {
	return LoadToken(server)
}

func (d *defaultTokenStore) DeleteToken(server string) error {
	return DeleteToken(server)
}

func (d *defaultTokenStore) SaveCookies(server string, cookies []*http.Cookie) error {
	return SaveCookies(server, cookies)
}

func (d *defaultTokenStore) LoadCookies(server string) ([]*http.Cookie, error) {
	return LoadCookies(server)
}

func (d *defaultTokenStore) DeleteCookies(server string) error {
	return DeleteCookies(server)
}

// MemoryStore keeps credentials in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	tokens  map[string]string
	cookies map[string][]*http.Cookie
}

// NewMemoryStore creates an empty in-memory credential store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens:  make(map[string]string),
		cookies: make(map[string][]*http.Cookie),
	}
}

func (m *MemoryStore) SaveToken(server, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[server] = token
	return nil
}

func (m *MemoryStore) LoadToken(server string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, exists := m.tokens[server]
	if !exists {
		return "", ErrNoToken
	}
	return token, nil
}

func (m *MemoryStore) DeleteToken(server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, server)
	return nil
}

func (m *MemoryStore) SaveCookies(server string, cookies []*http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(cookies) == 0 {
		delete(m.cookies, server)
		return nil
	}
	m.cookies[server] = cookies
	return nil
}

func (m *MemoryStore) LoadCookies(server string) ([]*http.Cookie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cookies[server], nil
}

func (m *MemoryStore) DeleteCookies(server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cookies, server)
	return nil
}

// ServerTokens is a TokenStore bound to one server. It satisfies the
// session's token store, reporting a missing token as empty.
type ServerTokens struct {
	store  TokenStore
	server string
}

// ForServer binds store to server
func ForServer(store TokenStore, server string) *ServerTokens {
	return &ServerTokens{store: store, server: server}
}

func (s *ServerTokens) SaveToken(token string) error {
	return s.store.SaveToken(s.server, token)
}

func (s *ServerTokens) LoadToken() (string, error) {
	token, err := s.store.LoadToken(s.server)
	if errors.Is(err, ErrNoToken) {
		return "", nil
	}
	return token, err
}

func (s *ServerTokens) DeleteToken() error {
	return s.store.DeleteToken(s.server)
}
