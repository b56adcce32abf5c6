package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID uint      `gorm:"not null;index" json:"channel_id"`
	Channel   Channel   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	VoteScore int       `gorm:"not null;default:0" json:"vote_score"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Filled at query time, not stored.
	Author      string `gorm:"-" json:"author"`
	ContentHTML string `gorm:"-" json:"content_html,omitempty"`
	ReplyCount  int    `gorm:"-" json:"reply_count"`
}
