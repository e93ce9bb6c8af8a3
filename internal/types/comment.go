package types

import (
	"time"
)

// Comment references its video by the string form of the video id so the
// column works under both identity strategies. Existence of the video is
// checked by the comment service, not by a database constraint.
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   string    `gorm:"size:64;not null;index;column:video_id" json:"video_id"`
	UserID    int64     `gorm:"not null;index;column:user_id" json:"user_id"`
	Content   string    `gorm:"size:1000;not null;column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
