package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sphere/internal/model"
	"sphere/internal/repository"
)

// DBBackend persists records in MySQL through the session repository.
type DBBackend struct {
	repo repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

var _ Backend = (*DBBackend)(nil)

// NewDBBackend creates a database-backed session backend.
func NewDBBackend(repo repository.SessionRepository, ttl time.Duration) *DBBackend {
	return &DBBackend{repo: repo, ttl: ttl, now: time.Now}
}

func (b *DBBackend) Load(ctx context.Context, id string) (*Record, error) {
	row, err := b.repo.FindActive(ctx, id, b.now())
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	rec := &Record{Token: row.Token}
	if len(row.UserJSON) > 0 {
		var user model.User
		if err := json.Unmarshal(row.UserJSON, &user); err != nil {
			return nil, fmt.Errorf("unmarshal session user: %w", err)
		}
		rec.User = &user
	}
	return rec, nil
}

func (b *DBBackend) Save(ctx context.Context, id string, rec Record) error {
	var userJSON []byte
	if rec.User != nil {
		var err error
		if userJSON, err = json.Marshal(rec.User); err != nil {
			return fmt.Errorf("marshal session user: %w", err)
		}
	}
	now := b.now()
	row := &model.BrowserSession{
		ID:        id,
		Token:     rec.Token,
		UserJSON:  userJSON,
		ExpiresAt: now.Add(b.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.repo.Upsert(ctx, row); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (b *DBBackend) Delete(ctx context.Context, id string) error {
	if err := b.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Purge removes expired rows.
func (b *DBBackend) Purge(ctx context.Context) (int64, error) {
	return b.repo.DeleteExpired(ctx, b.now())
}
