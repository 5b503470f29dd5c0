package models

import "time"

// Review is a user's rating and write-up of a game. HelpfulCount is
// incremented by distinct-voter likes; the count of points the review
// earned at submission time is kept for the audit trail.
type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	GameName     string    `gorm:"size:255;not null" json:"game_name"`
	Rating       int       `gorm:"not null" json:"rating"`
	ReviewText   string    `gorm:"type:text" json:"review_text"`
	PointsEarned int       `gorm:"not null;default:0" json:"points_earned"`
	HelpfulCount int       `gorm:"not null;default:0" json:"helpful_count"`
	CreatedAt    time.Time `json:"created_at"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// ReviewVote records a helpful-vote. The composite unique index enforces
// one vote per (review, voter) pair.
type ReviewVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReviewID  uint      `gorm:"index:idx_review_voter,unique;not null" json:"review_id"`
	UserID    uint      `gorm:"index:idx_review_voter,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
