package repository

import (
	"context"
	"strings"

	"chanboard/internal/models"
	"chanboard/internal/utils"

	"gorm.io/gorm"
)

func (r *Repository) CreatePost(ctx context.Context, channelID, authorID uint, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, utils.NewValidationError("Title and content are required")
	}

	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var channel models.Channel
		if err := tx.Clauses(forShare).Select("id").Take(&channel, channelID).Error; err != nil {
			return lookupErr(err, "channel", channelID)
		}
		var author models.User
		if err := tx.Clauses(forShare).Select("id", "username").Take(&author, authorID).Error; err != nil {
			return lookupErr(err, "user", authorID)
		}

		post = models.Post{ChannelID: channelID, UserID: authorID, Title: title, Content: content}
		if err := tx.Omit("Channel", "User").Create(&post).Error; err != nil {
			return err
		}
		post.Author = author.Username
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "create post")
	}
	return &post, nil
}

// ListPosts returns a channel's posts, newest first, with reply counts.
func (r *Repository) ListPosts(ctx context.Context, channelID uint) ([]models.Post, error) {
	if _, err := r.GetChannel(ctx, channelID); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("channel_id = ?", channelID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, utils.NewDatabaseError("list posts", err)
	}
	for i := range posts {
		posts[i].Author = posts[i].User.Username
	}
	if err := r.fillReplyCounts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *Repository) fillReplyCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := r.db.WithContext(ctx).Model(&models.Reply{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return utils.NewDatabaseError("count replies", err)
	}

	countMap := make(map[uint]int, len(results))
	for _, res := range results {
		countMap[res.PostID] = res.Count
	}
	for i := range posts {
		posts[i].ReplyCount = countMap[posts[i].ID]
	}
	return nil
}

// GetPost loads a post that must belong to channelID.
func (r *Repository) GetPost(ctx context.Context, channelID, postID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND channel_id = ?", postID, channelID).
		Take(&post).Error
	if err != nil {
		return nil, lookupErr(err, "post", postID)
	}
	post.Author = post.User.Username
	return &post, nil
}

func (r *Repository) PostExists(ctx context.Context, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return false, utils.NewDatabaseError("check post", err)
	}
	return count > 0, nil
}

// DeletePost removes a post of channelID together with its replies and
// every vote on the post or its replies.
func (r *Repository) DeletePost(ctx context.Context, channelID, postID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Clauses(forUpdate).Select("id").
			Where("id = ? AND channel_id = ?", postID, channelID).
			Take(&post).Error
		if err != nil {
			return lookupErr(err, "post", postID)
		}
		return deletePosts(tx, []uint{postID})
	})
	return passThrough(err, "delete post")
}

// lockReplies selects every reply of postIDs FOR UPDATE, so a concurrent
// CastVote on one of them waits until the cascade has committed.
func lockReplies(tx *gorm.DB, postIDs []uint) *gorm.DB {
	return tx.Clauses(forUpdate).Model(&models.Reply{}).Where("post_id IN ?", postIDs)
}

// deletePosts must run inside a transaction.
func deletePosts(tx *gorm.DB, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}

	var replyIDs []uint
	if err := lockReplies(tx, postIDs).Pluck("id", &replyIDs).Error; err != nil {
		return err
	}
	if err := deleteVotes(tx, models.TargetReply, replyIDs); err != nil {
		return err
	}
	if err := deleteVotes(tx, models.TargetPost, postIDs); err != nil {
		return err
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Reply{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error
}
