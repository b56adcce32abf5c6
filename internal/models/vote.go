package models

import (
	"time"
)

// TargetType identifies what a vote is cast on.
type TargetType string

const (
	TargetPost  TargetType = "post"
	TargetReply TargetType = "reply"
)

// ParseTargetType accepts both the singular and the plural route form.
func ParseTargetType(s string) (TargetType, bool) {
	switch s {
	case "post", "posts":
		return TargetPost, true
	case "reply", "replies":
		return TargetReply, true
	}
	return "", false
}

// Vote holds exactly one row per (user, target). Value 0 means retracted.
type Vote struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_vote_user_target,priority:1" json:"user_id"`
	TargetType TargetType `gorm:"type:varchar(10);not null;uniqueIndex:idx_vote_user_target,priority:2;index:idx_vote_target,priority:1" json:"target_type"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_vote_user_target,priority:3;index:idx_vote_target,priority:2" json:"target_id"`
	Value      int        `gorm:"not null;default:0" json:"value"` // -1, 0 or 1
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// VoteResult is returned after a vote write.
type VoteResult struct {
	NewScore int `json:"newScore"`
	UserVote int `json:"userVote"`
}

// ValidVoteValue reports whether v is one of -1, 0, 1.
func ValidVoteValue(v int) bool {
	return v >= -1 && v <= 1
}

// VoteTarget names one votable row.
type VoteTarget struct {
	Type TargetType
	ID   uint
}
