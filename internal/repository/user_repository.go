package repository

import (
	"context"
	"strings"

	"chanboard/internal/models"
	"chanboard/internal/thread"
	"chanboard/internal/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateUser stores a user. passwordHash must already be hashed.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || passwordHash == "" {
		return nil, utils.NewValidationError("username and password are required")
	}

	user := models.User{Username: username, Password: passwordHash, IsAdmin: isAdmin}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewAppError(utils.ErrConflict, "Username already exists", nil)
		}
		return nil, utils.NewDatabaseError("create user", err)
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewAppError(utils.ErrNotFound, "user not found: "+username, nil)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("load user", err)
	}
	return &user, nil
}

// DeleteUser removes a user and everything they wrote in one transaction.
// Their votes are dropped and every target they voted on has its score
// re-derived from the remaining votes. Their posts go with all replies, and
// each of their replies takes its subtree with it. Channels they created
// stay, without a creator.
//
// It returns the ids of posts whose reply threads changed.
func (r *Repository) DeleteUser(ctx context.Context, id uint) ([]uint, error) {
	affected := make(map[uint]struct{})
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(forUpdate).Select("id").Take(&user, id).Error; err != nil {
			return lookupErr(err, "user", id)
		}

		if err := retractUserVotes(tx, id, affected); err != nil {
			return err
		}

		var postIDs []uint
		if err := tx.Clauses(forUpdate).Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := deletePosts(tx, postIDs); err != nil {
			return err
		}
		for _, postID := range postIDs {
			affected[postID] = struct{}{}
		}

		if err := deleteUserReplies(tx, id, affected); err != nil {
			return err
		}

		if err := tx.Model(&models.Channel{}).Where("created_by = ?", id).UpdateColumn("created_by", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, passThrough(err, "delete user")
	}

	postIDs := make([]uint, 0, len(affected))
	for postID := range affected {
		postIDs = append(postIDs, postID)
	}
	return postIDs, nil
}

// retractUserVotes deletes a user's votes and rewrites the score of every
// target they touched. Targets are locked first, like CastVote does.
func retractUserVotes(tx *gorm.DB, userID uint, affected map[uint]struct{}) error {
	var votes []models.Vote
	if err := tx.Select("target_type", "target_id").Where("user_id = ?", userID).Find(&votes).Error; err != nil {
		return err
	}

	targets := make([]models.VoteTarget, 0, len(votes))
	for _, v := range votes {
		table, ok := targetTable(v.TargetType)
		if !ok {
			continue
		}
		var row scoreRow
		err := tx.Table(table).Clauses(forUpdate).Select("id").Where("id = ?", v.TargetID).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		targets = append(targets, models.VoteTarget{Type: v.TargetType, ID: v.TargetID})
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.Vote{}).Error; err != nil {
		return err
	}

	for _, target := range targets {
		table, _ := targetTable(target.Type)
		score, err := sumVotes(tx, target.Type, target.ID)
		if err != nil {
			return err
		}
		if err := tx.Table(table).Where("id = ?", target.ID).UpdateColumn("vote_score", score).Error; err != nil {
			return err
		}
		if target.Type == models.TargetReply {
			var reply models.Reply
			if err := tx.Select("post_id").Take(&reply, target.ID).Error; err != nil {
				return err
			}
			affected[reply.PostID] = struct{}{}
		}
	}
	return nil
}

// deleteUserReplies removes the user's replies on other people's posts,
// each with its full subtree and the votes on it.
func deleteUserReplies(tx *gorm.DB, userID uint, affected map[uint]struct{}) error {
	var postIDs []uint
	if err := tx.Model(&models.Reply{}).Distinct().Where("user_id = ?", userID).Pluck("post_id", &postIDs).Error; err != nil {
		return err
	}

	for _, postID := range postIDs {
		var index []models.Reply
		err := tx.Clauses(forUpdate).
			Select("id", "parent_id", "user_id").
			Where("post_id = ?", postID).
			Find(&index).Error
		if err != nil {
			return err
		}

		seen := make(map[uint]struct{})
		ids := make([]uint, 0)
		for _, reply := range index {
			if reply.UserID != userID {
				continue
			}
			if _, done := seen[reply.ID]; done {
				continue
			}
			for _, sub := range thread.Subtree(index, reply.ID) {
				if _, done := seen[sub]; !done {
					seen[sub] = struct{}{}
					ids = append(ids, sub)
				}
			}
		}

		if err := deleteVotes(tx, models.TargetReply, ids); err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		affected[postID] = struct{}{}
	}
	return nil
}
