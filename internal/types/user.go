package types

import (
	"time"
)

const (
	RoleUser       = 1
	RoleAdmin      = 2
	RoleSuperAdmin = 3
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	RoleID    int       `gorm:"not null;default:1;column:role_id" json:"role_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func ValidRole(roleID int) bool {
	return roleID == RoleUser || roleID == RoleAdmin || roleID == RoleSuperAdmin
}
