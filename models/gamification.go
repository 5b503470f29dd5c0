package models

import "time"

// GamificationRecord holds the per-user aggregate counters driven by the
// scoring pipeline. Exactly one row per user, created lazily on first
// gamification read or write. LastActivityDate tracks daily-bonus claims
// as a calendar date string (YYYY-MM-DD) so comparisons are timezone-free.
//
// Invariant: LongestStreak >= CurrentStreak.
type GamificationRecord struct {
	UserID           uint      `gorm:"primaryKey" json:"user_id"`
	TotalPoints      int       `gorm:"not null;default:0" json:"total_points"`
	CurrentStreak    int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak    int       `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate string    `gorm:"size:10" json:"last_activity_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (GamificationRecord) TableName() string { return "user_gamification" }

// PointsHistoryEntry is an append-only audit record of a point-granting
// event. Rows are never updated or deleted; leaderboard windows are
// computed by summing entries inside a period.
type PointsHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Points    int       `gorm:"not null" json:"points"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the historical table name.
func (PointsHistoryEntry) TableName() string { return "points_history" }

// BadgeAward records that a user has unlocked a badge. Append-only; the
// composite unique index enforces at most one award per (user, badge).
type BadgeAward struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"index:idx_user_badge,unique;not null" json:"user_id"`
	Badge    string    `gorm:"size:32;index:idx_user_badge,unique;not null" json:"badge"`
	EarnedAt time.Time `json:"earned_at"`
}

// TableName keeps the historical table name.
func (BadgeAward) TableName() string { return "user_badges" }
