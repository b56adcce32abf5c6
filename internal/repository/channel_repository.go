package repository

import (
	"context"
	"strings"

	"chanboard/internal/models"
	"chanboard/internal/utils"

	"gorm.io/gorm"
)

func (r *Repository) CreateChannel(ctx context.Context, name, description string, createdBy uint) (*models.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.NewValidationError("channel name is required")
	}

	var channel models.Channel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var creator models.User
		if err := tx.Clauses(forShare).Select("id", "username").Take(&creator, createdBy).Error; err != nil {
			return lookupErr(err, "user", createdBy)
		}

		channel = models.Channel{Name: name, Description: description, CreatedBy: &creator.ID}
		if err := tx.Omit("Creator").Create(&channel).Error; err != nil {
			return err
		}
		channel.CreatedByUsername = creator.Username
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "create channel")
	}
	return &channel, nil
}

// ListChannels returns every channel, newest first.
func (r *Repository) ListChannels(ctx context.Context) ([]models.Channel, error) {
	channels := make([]models.Channel, 0)
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC, id DESC").
		Find(&channels).Error
	if err != nil {
		return nil, utils.NewDatabaseError("list channels", err)
	}
	for i := range channels {
		fillCreator(&channels[i])
	}
	return channels, nil
}

func (r *Repository) GetChannel(ctx context.Context, id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).Preload("Creator").Take(&channel, id).Error; err != nil {
		return nil, lookupErr(err, "channel", id)
	}
	fillCreator(&channel)
	return &channel, nil
}

func fillCreator(c *models.Channel) {
	if c.Creator != nil {
		c.CreatedByUsername = c.Creator.Username
	}
}

func lockChannelPosts(tx *gorm.DB, channelID uint) *gorm.DB {
	return tx.Clauses(forUpdate).Model(&models.Post{}).Where("channel_id = ?", channelID)
}

// DeleteChannel removes a channel with its posts, their replies and every
// vote on any of them.
func (r *Repository) DeleteChannel(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var channel models.Channel
		if err := tx.Clauses(forUpdate).Select("id").Take(&channel, id).Error; err != nil {
			return lookupErr(err, "channel", id)
		}

		var postIDs []uint
		if err := lockChannelPosts(tx, id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := deletePosts(tx, postIDs); err != nil {
			return err
		}
		return tx.Delete(&models.Channel{}, id).Error
	})
	return passThrough(err, "delete channel")
}
