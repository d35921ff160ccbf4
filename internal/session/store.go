// Package session persists the portal's per-browser session: the backend
// bearer token and the last-known user profile.
//
// Both values are stored as one Record so readers never observe a token
// without its profile or the reverse. Only the auth gateway and the API
// client's unauthorized handler are expected to mutate a Store.
package session

import (
	"context"
	"errors"

	"sphere/internal/model"
)

// ErrEmptyToken is returned when a session is written without a token.
var ErrEmptyToken = errors.New("session token must not be empty")

// Record is the persisted unit of a session.
type Record struct {
	Token string      `json:"token" yaml:"token"`
	User  *model.User `json:"user,omitempty" yaml:"user,omitempty"`
}

// Backend persists records keyed by session id.
// Load returns (nil, nil) when no record exists.
type Backend interface {
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, id string, rec Record) error
	Delete(ctx context.Context, id string) error
}

// Store is the session of one browser, bound to its id.
type Store struct {
	backend Backend
	id      string
}

// New binds a Store to the session id.
func New(backend Backend, id string) *Store {
	return &Store{backend: backend, id: id}
}

// ID returns the session id the store is bound to.
func (s *Store) ID() string {
	return s.id
}

func (s *Store) load(ctx context.Context) *Record {
	rec, err := s.backend.Load(ctx, s.id)
	if err != nil || rec == nil {
		return nil
	}
	return rec
}

// HasToken reports whether a token is stored. It says nothing about validity.
// A backend read failure counts as no token.
func (s *Store) HasToken(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// Token returns the stored bearer token.
func (s *Store) Token(ctx context.Context) (string, bool) {
	rec := s.load(ctx)
	if rec == nil || rec.Token == "" {
		return "", false
	}
	return rec.Token, true
}

// CachedUser returns the last stored profile, for optimistic rendering only.
func (s *Store) CachedUser(ctx context.Context) (*model.User, bool) {
	rec := s.load(ctx)
	if rec == nil || rec.User == nil {
		return nil, false
	}
	return rec.User, true
}

// SetSession overwrites token and user in a single write.
func (s *Store) SetSession(ctx context.Context, token string, user *model.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	return s.backend.Save(ctx, s.id, Record{Token: token, User: user})
}

// ClearSession removes the session. Clearing an empty store is not an error.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.backend.Delete(ctx, s.id)
}
