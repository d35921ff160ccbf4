package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sphere/internal/model"
)

// SessionRepository defines persistence operations for browser sessions.
type SessionRepository interface {
	Upsert(ctx context.Context, sess *model.BrowserSession) error
	FindActive(ctx context.Context, id string, now time.Time) (*model.BrowserSession, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository builds a GORM-backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Upsert writes token and profile in one INSERT ... ON DUPLICATE KEY UPDATE.
func (r *sessionRepository) Upsert(ctx context.Context, sess *model.BrowserSession) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "user_json", "expires_at", "updated_at"}),
		}).
		Create(sess).Error
}

// FindActive returns the unexpired session or nil when there is none.
func (r *sessionRepository) FindActive(ctx context.Context, id string, now time.Time) (*model.BrowserSession, error) {
	var sess model.BrowserSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, now).
		Take(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BrowserSession{}).Error
}

// DeleteExpired purges sessions past their expiry and returns how many were removed.
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.BrowserSession{})
	return res.RowsAffected, res.Error
}
