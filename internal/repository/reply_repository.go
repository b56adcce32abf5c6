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

// CreateReply stores a reply under postID, optionally beneath parentID.
// The parent must already exist on the same post; nothing is written when
// validation fails.
func (r *Repository) CreateReply(ctx context.Context, postID uint, parentID *uint, authorID uint, content string) (*models.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.NewValidationError("reply content must not be empty")
	}

	var reply models.Reply
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(forShare).Select("id", "channel_id").Take(&post, postID).Error; err != nil {
			return lookupErr(err, "post", postID)
		}

		if parentID != nil {
			var parent models.Reply
			err := tx.Clauses(forShare).Select("id", "post_id").Take(&parent, *parentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewInvalidParentError("parent reply %d does not exist", *parentID)
			}
			if err != nil {
				return err
			}
			if parent.PostID != postID {
				return utils.NewInvalidParentError("parent reply %d belongs to post %d, not %d", *parentID, parent.PostID, postID)
			}
		}

		var author models.User
		if err := tx.Clauses(forShare).Select("id", "username").Take(&author, authorID).Error; err != nil {
			return lookupErr(err, "user", authorID)
		}

		reply = models.Reply{
			PostID:    postID,
			ChannelID: post.ChannelID,
			UserID:    authorID,
			ParentID:  parentID,
			Content:   content,
		}
		if err := tx.Omit("Post", "User", "Parent").Create(&reply).Error; err != nil {
			return err
		}
		reply.Author = author.Username
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "create reply")
	}
	return &reply, nil
}

// ListReplies returns every reply of a post, flat, oldest first. Ties on
// created_at fall back to insertion order.
func (r *Repository) ListReplies(ctx context.Context, postID uint) ([]models.Reply, error) {
	replies := make([]models.Reply, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, utils.NewDatabaseError("list replies", err)
	}
	for i := range replies {
		replies[i].Author = replies[i].User.Username
	}
	return replies, nil
}

func (r *Repository) GetReply(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("User").Take(&reply, id).Error; err != nil {
		return nil, lookupErr(err, "reply", id)
	}
	reply.Author = reply.User.Username
	return &reply, nil
}

// DeleteReply removes a reply, its whole subtree and every vote cast on any
// of them in one transaction. It returns the deleted reply (for its post id)
// and the number of replies removed.
func (r *Repository) DeleteReply(ctx context.Context, id uint) (*models.Reply, int, error) {
	var target models.Reply
	var removed int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).Select("id", "post_id", "parent_id").Take(&target, id).Error; err != nil {
			return lookupErr(err, "reply", id)
		}

		// Lock the whole thread so no child can be attached mid-delete.
		var index []models.Reply
		err := tx.Clauses(forUpdate).
			Select("id", "parent_id").
			Where("post_id = ?", target.PostID).
			Find(&index).Error
		if err != nil {
			return err
		}

		ids := thread.Subtree(index, id)
		if err := deleteVotes(tx, models.TargetReply, ids); err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		removed = len(ids)
		return nil
	})
	if err != nil {
		return nil, 0, passThrough(err, "delete reply")
	}
	return &target, removed, nil
}
