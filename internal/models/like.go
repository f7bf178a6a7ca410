package models

import (
	"time"
)

// Like represents a user's like on a video.
// The combination of UserID and VideoID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_video" json:"user_id"`
	VideoID   uint      `gorm:"not null;uniqueIndex:idx_user_video" json:"video_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user"`
	Video Video `gorm:"foreignKey:VideoID" json:"video"`
}
