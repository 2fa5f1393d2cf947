package session

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/models"
)

// ErrInvalidLoginResponse is returned when an authenticator reports success
// without both a user and a token.
var ErrInvalidLoginResponse = errors.New("invalid login response from server")

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	// Logout notifies the server. Callers ignore the error.
	Logout(ctx context.Context) error
}

// SessionFetcher is implemented by authenticators that can recover the
// server-side session. A nil session means none exists.
type SessionFetcher interface {
	CurrentSession(ctx context.Context) (*models.Session, error)
}

// State is a point-in-time view of the manager.
type State struct {
	User        *models.User
	AccessToken string
	IsLoading   bool
	Error       string
}

// IsAuthenticated reports whether both user and token are present.
func (s State) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Manager holds the in-memory authentication state, backed by a Store.
type Manager struct {
	store  *Store
	auth   Authenticator
	logger *zap.Logger

	mu    sync.RWMutex
	state State

	unsubscribe func()
}

// NewManager seeds state from the store and follows its cleared notification
// until Close.
func NewManager(ctx context.Context, store *Store, auth Authenticator, logger *zap.Logger) *Manager {
	m := &Manager{
		store:  store,
		auth:   auth,
		logger: logger.Named("auth"),
	}
	m.unsubscribe = store.Subscribe(m.onCleared)

	persisted := store.Load(ctx)
	m.mu.Lock()
	if persisted.Valid() {
		m.state = State{User: persisted.User, AccessToken: persisted.AccessToken}
	}
	m.mu.Unlock()
	return m
}

// Close stops following the store.
func (m *Manager) Close() {
	m.unsubscribe()
}

func (m *Manager) onCleared() {
	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
}

// State returns a consistent snapshot.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// User returns the signed-in user, or nil.
func (m *Manager) User() *models.User {
	return m.State().User
}

func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsLoading
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsAuthenticated()
}

// HasRole reports whether the signed-in user holds one of roles.
func (m *Manager) HasRole(roles ...models.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.User == nil {
		return false
	}
	return slices.Contains(roles, m.state.User.Role)
}

// Login authenticates and persists the session. On failure the session is
// cleared, the error is kept in State().Error and returned.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	m.state.IsLoading = true
	m.state.Error = ""
	m.mu.Unlock()

	sess, err := m.auth.Login(ctx, email, password)
	if err == nil && !sess.Valid() {
		err = ErrInvalidLoginResponse
	}
	if err != nil {
		m.logger.Debug("Login failed", zap.String("email", email), zap.Error(err))
		// Clear first: its notification resets state, and the error must survive it.
		m.store.Clear(ctx)
		msg := loginErrorMessage(err)
		m.mu.Lock()
		m.state = State{Error: msg}
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.state = State{User: sess.User, AccessToken: sess.AccessToken}
	m.mu.Unlock()
	m.store.Persist(ctx, *sess.User, sess.AccessToken)

	m.logger.Info("Signed in", zap.String("user_id", sess.User.ID), zap.String("role", string(sess.User.Role)))
	return nil
}

// loginErrorMessage is the text State().Error shows for a failed login.
func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLoginResponse):
		return "Invalid login response from server"
	case err.Error() == "":
		return "Login failed"
	default:
		return err.Error()
	}
}

// Logout notifies the server on a best-effort basis, then clears the session.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.state.IsLoading = true
	m.mu.Unlock()

	if err := m.auth.Logout(ctx); err != nil {
		m.logger.Debug("Logout notification failed", zap.Error(err))
	}

	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
	m.store.Clear(ctx)
}

// Refresh asks the server for its current session. A returned session replaces
// the local one; no session leaves state untouched. Authenticators without
// server sessions make this a no-op.
func (m *Manager) Refresh(ctx context.Context) error {
	fetcher, ok := m.auth.(SessionFetcher)
	if !ok {
		return nil
	}
	sess, err := fetcher.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if !sess.Valid() {
		return nil
	}

	m.mu.Lock()
	m.state = State{User: sess.User, AccessToken: sess.AccessToken}
	m.mu.Unlock()
	m.store.Persist(ctx, *sess.User, sess.AccessToken)
	return nil
}
