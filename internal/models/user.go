package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the resolved caller passed into every core operation.
// It is trusted verbatim; authentication happens upstream.
type Identity struct {
	UserID   uint
	Username string
	IsAdmin  bool
}
