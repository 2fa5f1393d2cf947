package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/models"
)

// failingBackend errors on every call.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}
func (failingBackend) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (failingBackend) Delete(context.Context, string) error     { return errors.New("storage unavailable") }

func newTestStore(t *testing.T) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	return NewStore(backend, zap.NewNop()), backend
}

func TestStore_LoadEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	sess := store.Load(context.Background())
	assert.Nil(t, sess.User)
	assert.Empty(t, sess.AccessToken)
}

func TestStore_PersistThenLoad(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	user := models.User{ID: "u-1", Email: "ana@example.com", Name: "Ana", Role: models.RoleManager}

	store.Persist(ctx, user, "tok-1")

	raw, ok, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"user":{"id":"u-1","email":"ana@example.com","name":"Ana","role":"manager"},"accessToken":"tok-1"}`, raw)

	sess := store.Load(ctx)
	require.NotNil(t, sess.User)
	assert.Equal(t, user, *sess.User)
	assert.Equal(t, "tok-1", sess.AccessToken)
	assert.Equal(t, "tok-1", store.AccessToken(ctx))
}

func TestStore_LoadDiscardsMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{not-json"},
		{name: "missing token", raw: `{"user":{"id":"u-1","role":"admin"}}`},
		{name: "missing user", raw: `{"accessToken":"tok"}`},
		{name: "empty token", raw: `{"user":{"id":"u-1"},"accessToken":""}`},
		{name: "wrong shape", raw: `["user","token"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, backend := newTestStore(t)
			require.NoError(t, backend.Set(ctx, StorageKey, tt.raw))

			var notified atomic.Int32
			store.Subscribe(func() { notified.Add(1) })

			sess := store.Load(ctx)
			assert.Nil(t, sess.User)
			assert.Empty(t, sess.AccessToken)

			_, ok, _ := backend.Get(ctx, StorageKey)
			assert.False(t, ok, "malformed record should be removed")
			assert.Equal(t, int32(1), notified.Load())
		})
	}
}

func TestStore_ClearNotifiesAllListeners(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	store.Persist(ctx, models.User{ID: "u-1"}, "tok")

	var a, b atomic.Int32
	store.Subscribe(func() { a.Add(1) })
	unsubscribeB := store.Subscribe(func() { b.Add(1) })

	store.Clear(ctx)
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())

	_, ok, _ := backend.Get(ctx, StorageKey)
	assert.False(t, ok)

	unsubscribeB()
	unsubscribeB() // idempotent
	store.Clear(ctx)
	assert.Equal(t, int32(2), a.Load())
	assert.Equal(t, int32(1), b.Load())
}

func TestStore_ListenerMayUnsubscribeDuringBroadcast(t *testing.T) {
	store, _ := newTestStore(t)

	var calls atomic.Int32
	var unsubscribe func()
	unsubscribe = store.Subscribe(func() {
		calls.Add(1)
		unsubscribe()
	})

	store.Clear(context.Background())
	store.Clear(context.Background())
	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := NewStore(failingBackend{}, zap.NewNop())

	var notified atomic.Int32
	store.Subscribe(func() { notified.Add(1) })

	assert.NotPanics(t, func() {
		store.Persist(ctx, models.User{ID: "u-1"}, "tok")
	})
	loaded := store.Load(ctx)
	assert.False(t, loaded.Valid())

	store.Clear(ctx)
	assert.Equal(t, int32(1), notified.Load(), "clear must notify even when removal fails")
}

func TestStore_RememberAndTakeLocation(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	assert.Empty(t, store.TakeLocation(ctx))

	store.RememberLocation(ctx, "/reports")
	store.Persist(ctx, models.User{ID: "u-1", Email: "a@example.com", Role: models.RoleUser}, "tok")
	assert.Equal(t, "/reports", store.TakeLocation(ctx))
	assert.Empty(t, store.TakeLocation(ctx))

	_, ok, err := backend.Get(ctx, ReturnToKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "tok", store.AccessToken(ctx))

	store.RememberLocation(ctx, "")
	assert.Empty(t, store.TakeLocation(ctx))
}
