package models

import (
	"time"
)

type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index:idx_reply_post_created,priority:1" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ChannelID uint      `gorm:"not null;index" json:"channel_id"` // denormalized from Post
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level replies
	Parent    *Reply    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	VoteScore int       `gorm:"not null;default:0" json:"vote_score"`
	CreatedAt time.Time `gorm:"index:idx_reply_post_created,priority:2" json:"created_at"`

	Author      string `gorm:"-" json:"author"`
	ContentHTML string `gorm:"-" json:"content_html,omitempty"`
}

// ReplyNode is a reply together with its nested children.
type ReplyNode struct {
	Reply
	Replies []*ReplyNode `json:"replies"`
}
