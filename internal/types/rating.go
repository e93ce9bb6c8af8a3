package types

import (
	"time"
)

// Rating is one user's 1-5 score for a video; one row per (user, video).
type Rating struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   string    `gorm:"size:64;not null;uniqueIndex:idx_rating_user_video;column:video_id" json:"video_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_rating_user_video;column:user_id" json:"user_id"`
	Score     int       `gorm:"not null;column:score" json:"score"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Rating) TableName() string { return "ratings" }

// RatingSummary is the aggregate exposed on video detail.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
