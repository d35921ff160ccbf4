package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sphere/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:    7,
		Email: "rani@example.com",
		Name:  "Rani",
		Role:  model.Role{Name: "Admin", Slug: model.RoleAdmin, Level: 2},
	}
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), "sid-1")

	assert.False(t, store.HasToken(ctx))
	_, ok := store.CachedUser(ctx)
	assert.False(t, ok)

	require.NoError(t, store.SetSession(ctx, "tok-1", testUser()))
	assert.True(t, store.HasToken(ctx))
	tok, ok := store.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)
	user, ok := store.CachedUser(ctx)
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, user.Role.Slug)

	require.NoError(t, store.SetSession(ctx, "tok-2", nil))
	tok, _ = store.Token(ctx)
	assert.Equal(t, "tok-2", tok)
	_, ok = store.CachedUser(ctx)
	assert.False(t, ok, "overwrite replaces both fields")

	require.NoError(t, store.ClearSession(ctx))
	assert.False(t, store.HasToken(ctx))
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), "sid-1")

	require.NoError(t, store.ClearSession(ctx))
	first := snapshot(ctx, store)
	require.NoError(t, store.SetSession(ctx, "tok", testUser()))
	require.NoError(t, store.ClearSession(ctx))
	require.NoError(t, store.ClearSession(ctx))
	second := snapshot(ctx, store)

	assert.Equal(t, first, second)
	assert.Equal(t, storeSnapshot{}, second)
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), "sid-1")

	err := store.SetSession(ctx, "", testUser())
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, store.HasToken(ctx))
}

func TestStore_IsolatedByID(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	a := New(backend, "a")
	b := New(backend, "b")

	require.NoError(t, a.SetSession(ctx, "tok-a", nil))
	assert.True(t, a.HasToken(ctx))
	assert.False(t, b.HasToken(ctx))
	assert.Equal(t, "b", b.ID())
}

func TestStore_BackendReadFailureMeansNoToken(t *testing.T) {
	store := New(failingBackend{}, "sid")

	assert.False(t, store.HasToken(context.Background()))
	_, ok := store.CachedUser(context.Background())
	assert.False(t, ok)
}

type storeSnapshot struct {
	HasToken bool
	Token    string
	User     *model.User
}

func snapshot(ctx context.Context, s *Store) storeSnapshot {
	tok, _ := s.Token(ctx)
	user, _ := s.CachedUser(ctx)
	return storeSnapshot{HasToken: s.HasToken(ctx), Token: tok, User: user}
}

type failingBackend struct{}

func (failingBackend) Load(context.Context, string) (*Record, error) {
	return nil, errors.New("backend down")
}
func (failingBackend) Save(context.Context, string, Record) error { return errors.New("backend down") }
func (failingBackend) Delete(context.Context, string) error       { return errors.New("backend down") }
