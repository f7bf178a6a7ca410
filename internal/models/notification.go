package models

import (
	"time"
)

// NotificationType identifies the engagement event that produced a notification.
type NotificationType string

const (
	// NotificationTypeLike is emitted when someone likes a video.
	NotificationTypeLike NotificationType = "like"
	// NotificationTypeComment is emitted when someone comments on a video.
	NotificationTypeComment NotificationType = "comment"
)

// Notification represents an engagement notification delivered to a video owner.
// Notifications are only created when the actor is not the owner.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	ActorID   uint             `gorm:"not null" json:"actor_id"`
	VideoID   uint             `gorm:"not null" json:"video_id"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message   string           `json:"message"`
	Read      bool             `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time        `json:"created_at"`

	// Relationships
	Actor User  `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Video Video `gorm:"foreignKey:VideoID" json:"video,omitempty"`
}
