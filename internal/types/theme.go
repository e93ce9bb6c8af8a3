package types

import (
	"time"
)

// Theme is a read-only reference entity from the upload pipeline's point of
// view; videos carry it as an opaque foreign key.
type Theme struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Theme) TableName() string { return "themes" }
