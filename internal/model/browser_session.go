package model

import "time"

// BrowserSession is the MySQL row backing one portal session.
// Token and the serialized user are always written together.
type BrowserSession struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Token     string    `gorm:"type:text;not null"`
	UserJSON  []byte    `gorm:"type:json"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name used by migrations and queries.
func (BrowserSession) TableName() string {
	return "browser_sessions"
}
