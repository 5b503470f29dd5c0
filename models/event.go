package models

import "time"

// Event is a community-created listing. Events are immutable once
// published; there are no update or delete paths.
type Event struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	EventDate       time.Time `gorm:"index;not null" json:"event_date"`
	Location        string    `gorm:"size:255;not null" json:"location"`
	EventType       string    `gorm:"size:50;not null" json:"event_type"`
	CustomType      string    `gorm:"size:50" json:"custom_type,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	MaxAttendees    *int      `json:"max_attendees,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"organizer"`
}
