package models

import (
	"time"

	"gorm.io/gorm"
)

// VideoStatus represents the processing state of an uploaded video.
type VideoStatus string

const (
	// VideoStatusQueued indicates the video is awaiting processing.
	VideoStatusQueued VideoStatus = "queued"
	// VideoStatusProcessing indicates the video is being finalized.
	VideoStatusProcessing VideoStatus = "processing"
	// VideoStatusReady indicates the video is available for playback.
	VideoStatusReady VideoStatus = "ready"
	// VideoStatusFailed indicates processing failed permanently.
	VideoStatusFailed VideoStatus = "failed"
)

// Category labels used by the original catalog. The set is open; these are
// the well-known values.
const (
	CategoryQuran  = "Quran"
	CategoryHadith = "Hadith"
	CategoryDaawah = "Daawah"
)

// Video represents a video in the UmmahTube catalog.
type Video struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Title           string      `gorm:"not null" json:"title"`
	Description     string      `gorm:"type:text" json:"description"`
	Category        string      `gorm:"index" json:"category"`
	VideoURL        string      `gorm:"not null" json:"video_url"`
	ObjectKey       string      `gorm:"size:512" json:"-"`
	ThumbnailURL    string      `json:"thumbnail_url"`
	DurationSeconds int         `json:"duration_seconds"`
	Views           int64       `gorm:"default:0" json:"views"`
	Status          VideoStatus `gorm:"type:varchar(20);default:'ready';index" json:"status"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	User            User        `gorm:"foreignKey:UserID" json:"user"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this video (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
