package models

import (
	"time"
)

type Channel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   *uint     `gorm:"index" json:"created_by"`
	Creator     *User     `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`

	CreatedByUsername string `gorm:"-" json:"created_by_username,omitempty"`
}
