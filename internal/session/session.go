// Package session holds who is logged in against the backend and the
// operations that change it. A Session is built once per client profile and
// handed to whatever needs identity; nothing in this package is global.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/newsox/newsox/internal/apierr"
	"github.com/newsox/newsox/internal/models"
)

// LogoutMessage is shown after a logout when feedback is requested
const LogoutMessage = "Logged out."

// State is a point-in-time copy of the session
type State struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	AccessToken     string
}

// Session is the authentication state of one client profile.
// All methods are safe for concurrent use. Overlapping Login and CheckAuth
// calls are last-write-wins.
type Session struct {
	api       API
	tokens    TokenStore
	snapshots SnapshotStore
	notifier  Notifier
	navigator Navigator
	log       zerolog.Logger

	mu          sync.RWMutex
	user        *models.User
	accessToken string
	loading     bool
}

// Option configures a Session
type Option func(*Session)

// WithTokenStore sets where the bearer token is persisted
func WithTokenStore(store TokenStore) Option {
	return func(s *Session) { s.tokens = store }
}

// WithSnapshotStore sets where the last known user is persisted
func WithSnapshotStore(store SnapshotStore) Option {
	return func(s *Session) { s.snapshots = store }
}

// WithNotifier sets how logout feedback is shown
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithNavigator sets what happens after logout
func WithNavigator(n Navigator) Option {
	return func(s *Session) { s.navigator = n }
}

// WithLogger sets the diagnostics logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New creates a session and hydrates it from the configured stores.
// The session reports IsLoading until the first CheckAuth (normally via
// Start) has finished.
func New(api API, opts ...Option) *Session {
	s := &Session{
		api:       api,
		tokens:    NewMemoryTokenStore(),
		snapshots: NewMemorySnapshotStore(),
		notifier:  nopNotifier{},
		navigator: nopNavigator{},
		log:       log.Logger,
		loading:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "session").Logger()

	s.hydrate()
	return s
}

// hydrate restores the optimistic state shown before revalidation
func (s *Session) hydrate() {
	user, err := s.snapshots.LoadUser()
	if err != nil {
		s.log.Warn().Err(err).Msg("Discarding unreadable user snapshot")
		if err := s.snapshots.DeleteUser(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to delete user snapshot")
		}
		user = nil
	}
	if u := Normalize(user); hasIdentity(u) {
		s.user = u
		s.log.Debug().Int64("user_id", u.ID).Msg("Restored user snapshot")
	}

	token, err := s.tokens.LoadToken()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load access token")
		return
	}
	s.accessToken = token
}

// Start runs the initial revalidation against the backend.
// Its result replaces whatever was hydrated from the snapshot.
func (s *Session) Start(ctx context.Context) State {
	return s.CheckAuth(ctx)
}

// Login records an identity the caller has already authenticated.
// The payload may be flat or nested under "member". The login replaces the
// whole credential: a non-empty token is persisted and sent with later
// requests, an empty one (cookie-only login) drops any earlier token.
// A payload that names nobody is ignored, the same record CheckAuth would
// refuse.
func (s *Session) Login(user *models.User, accessToken string) {
	u := Normalize(user)
	if u == nil {
		s.log.Warn().Msg("Ignoring login without a user")
		return
	}
	if !hasIdentity(u) {
		s.log.Warn().Msg("Ignoring login for a user with no identity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = u
	s.accessToken = accessToken
	if accessToken != "" {
		if err := s.tokens.SaveToken(accessToken); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist access token")
		}
	} else if err := s.tokens.DeleteToken(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete access token")
	}
	if err := s.snapshots.SaveUser(u); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist user snapshot")
	}

	s.log.Debug().Int64("user_id", u.ID).Bool("bearer", accessToken != "").Msg("Logged in")
}

// Logout ends the session on the backend and always clears it locally,
// even when the backend call fails. With showFeedback the notifier is told.
// Finally the navigator is asked to return to the application root.
func (s *Session) Logout(ctx context.Context, showFeedback bool) {
	// The session is going away either way, so a failed call only gets logged.
	if err := s.api.Logout(ctx, s.AccessToken()); err != nil {
		s.log.Warn().Err(err).Msg("Backend logout failed, clearing session locally")
	}

	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	if err := s.tokens.DeleteToken(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete access token")
	}
	if err := s.snapshots.DeleteUser(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete user snapshot")
	}
	s.mu.Unlock()

	if showFeedback {
		s.notifier.Notify(LogoutMessage)
	}
	s.navigator.NavigateRoot()
}

// CheckAuth asks the backend who is logged in and updates the session.
// It never fails: a 401 means anonymous, and any other failure is logged and
// also treated as anonymous. The first call ends the loading state.
func (s *Session) CheckAuth(ctx context.Context) State {
	token := s.AccessToken()
	user, err := s.api.MemberInfo(ctx, token)
	u := Normalize(user)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch classify(u, err) {
	case resultAuthenticated:
		s.user = u
		if err := s.snapshots.SaveUser(u); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist user snapshot")
		}
	case resultAnonymous:
		s.log.Debug().Msg("Backend reports no logged in user")
		s.clearLocked(token != "")
	default:
		if err == nil {
			err = errors.New("identity response carried no member")
		}
		s.log.Warn().Err(err).Msg("Identity check failed, treating session as anonymous")
		s.clearLocked(false)
	}
	s.loading = false

	return s.stateLocked()
}

// RefreshUser re-fetches the current identity, e.g. after an action that
// changed level or experience on the backend. It is the same call as
// CheckAuth.
func (s *Session) RefreshUser(ctx context.Context) State {
	return s.CheckAuth(ctx)
}

// clearLocked drops the identity. A token the backend just rejected is
// dropped too; after a transport failure it is kept for the next attempt.
func (s *Session) clearLocked(dropToken bool) {
	s.user = nil
	if err := s.snapshots.DeleteUser(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete user snapshot")
	}
	if dropToken {
		s.accessToken = ""
		if err := s.tokens.DeleteToken(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to delete access token")
		}
	}
}

// State returns a copy of the current session
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		User:            cloneUser(s.user),
		IsAuthenticated: s.user != nil,
		IsLoading:       s.loading,
		AccessToken:     s.accessToken,
	}
}

// User returns a copy of the current user, or nil when anonymous
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// IsAuthenticated reports whether a user is present. It is derived from the
// user, never stored separately.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading is true until the first CheckAuth completes
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// AccessToken returns the bearer token, or "" for cookie-only sessions
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

type result int

const (
	resultAuthenticated result = iota
	resultAnonymous
	resultTransientError
)

// classify collapses an identity response to what the session acts on
func classify(u *models.User, err error) result {
	switch {
	case err == nil && hasIdentity(u):
		return resultAuthenticated
	case errors.Is(err, apierr.ErrUnauthorized):
		return resultAnonymous
	default:
		return resultTransientError
	}
}
