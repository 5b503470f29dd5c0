package models

import "time"

// Session maps an opaque bearer token to a user. Tokens are issued at
// sign-up/sign-in, carried in an http-only cookie, and removed at logout
// or once the expiry timestamp has passed.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry timestamp.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
