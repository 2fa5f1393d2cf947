package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/models"
)

// StorageKey is the fixed key of the persisted session record.
const StorageKey = "datadrift.auth"

// ReturnToKey holds the location the next successful login lands on.
const ReturnToKey = "datadrift.returnTo"

// Store persists the {user, accessToken} record and announces when it is cleared.
// Storage failures never reach the caller: a missing or unreadable record is
// simply an anonymous session.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func()
}

// NewStore creates a Store over backend.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend:   backend,
		logger:    logger.Named("session-store"),
		listeners: make(map[uint64]func()),
	}
}

// Load returns the persisted session, or the empty session when nothing valid
// is stored. A corrupt or partial record is removed.
func (s *Store) Load(ctx context.Context) models.Session {
	raw, ok, err := s.backend.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Debug("Failed to read session", zap.Error(err))
		return models.Session{}
	}
	if !ok || raw == "" {
		return models.Session{}
	}

	var stored models.Session
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || !stored.Valid() {
		s.logger.Debug("Discarding malformed session record", zap.Error(err))
		s.Clear(ctx)
		return models.Session{}
	}
	return stored
}

// AccessToken returns the stored bearer token, or "" when signed out.
func (s *Store) AccessToken(ctx context.Context) string {
	return s.Load(ctx).AccessToken
}

// Persist writes user and token as one record. Best effort.
func (s *Store) Persist(ctx context.Context, user models.User, accessToken string) {
	data, err := json.Marshal(models.Session{User: &user, AccessToken: accessToken})
	if err != nil {
		s.logger.Debug("Failed to encode session", zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, StorageKey, string(data)); err != nil {
		s.logger.Debug("Failed to persist session", zap.Error(err))
	}
}

// Clear removes the record, then notifies every listener.
func (s *Store) Clear(ctx context.Context) {
	if err := s.backend.Delete(ctx, StorageKey); err != nil {
		s.logger.Debug("Failed to remove session", zap.Error(err))
	}
	s.broadcast()
}

// RememberLocation records where to go after the next login. Best effort.
func (s *Store) RememberLocation(ctx context.Context, location string) {
	if location == "" {
		return
	}
	if err := s.backend.Set(ctx, ReturnToKey, location); err != nil {
		s.logger.Debug("Failed to remember location", zap.Error(err))
	}
}

// TakeLocation returns the recorded location and forgets it. It returns ""
// when nothing is recorded.
func (s *Store) TakeLocation(ctx context.Context) string {
	location, ok, err := s.backend.Get(ctx, ReturnToKey)
	if err != nil || !ok {
		return ""
	}
	if err := s.backend.Delete(ctx, ReturnToKey); err != nil {
		s.logger.Debug("Failed to forget location", zap.Error(err))
	}
	return location
}

// Subscribe registers fn to run after every Clear. The returned func removes it.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// broadcast runs listeners outside the lock so they may unsubscribe themselves.
func (s *Store) broadcast() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
