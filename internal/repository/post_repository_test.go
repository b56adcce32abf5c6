package repository

import (
	"context"
	"testing"

	"chanboard/internal/models"
	"chanboard/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListPosts(t *testing.T) {
	repo, _, f := newRepo(t)
	ctx := context.Background()

	_, err := repo.CreatePost(ctx, f.Channel.ID, f.Bob.ID, " ", "body")
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
	_, err = repo.CreatePost(ctx, 999, f.Bob.ID, "t", "body")
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	post, err := repo.CreatePost(ctx, f.Channel.ID, f.Bob.ID, "Generics", "discuss")
	require.NoError(t, err)
	assert.Equal(t, "bob", post.Author)

	mustReply(t, repo, post.ID, nil, f.Alice.ID, "nice")
	mustReply(t, repo, post.ID, nil, f.Alice.ID, "again")

	posts, err := repo.ListPosts(ctx, f.Channel.ID)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, post.ID, posts[0].ID)
	assert.Equal(t, 2, posts[0].ReplyCount)

	_, err = repo.ListPosts(ctx, 999)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	_, err = repo.GetPost(ctx, f.Channel.ID+1, post.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestDeletePostCascades(t *testing.T) {
	repo, gdb, f := newRepo(t)
	ctx := context.Background()

	a := mustReply(t, repo, f.Post.ID, nil, f.Alice.ID, "A")
	mustReply(t, repo, f.Post.ID, a, f.Bob.ID, "B")
	_, err := repo.CastVote(ctx, f.Bob.ID, models.TargetReply, a.ID, 1)
	require.NoError(t, err)
	_, err = repo.CastVote(ctx, f.Bob.ID, models.TargetPost, f.Post.ID, 1)
	require.NoError(t, err)
	_, err = repo.CastVote(ctx, f.Bob.ID, models.TargetPost, f.Other.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repo.DeletePost(ctx, f.Channel.ID, f.Post.ID))

	assert.Zero(t, count(t, gdb, &models.Reply{}, "post_id = ?", f.Post.ID))
	assert.Zero(t, count(t, gdb, &models.Vote{}, "target_type = ?", models.TargetReply))
	assert.EqualValues(t, 1, count(t, gdb, &models.Vote{}, "target_type = ?", models.TargetPost))

	exists, err := repo.PostExists(ctx, f.Post.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.DeletePost(ctx, f.Channel.ID, f.Post.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestDeleteChannelCascades(t *testing.T) {
	repo, gdb, f := newRepo(t)
	ctx := context.Background()

	mustReply(t, repo, f.Other.ID, nil, f.Alice.ID, "A")
	_, err := repo.CastVote(ctx, f.Bob.ID, models.TargetPost, f.Post.ID, 1)
	require.NoError(t, err)

	other, err := repo.CreateChannel(ctx, "rust", "", f.Bob.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteChannel(ctx, f.Channel.ID))

	assert.Zero(t, count(t, gdb, &models.Post{}, "1 = 1"))
	assert.Zero(t, count(t, gdb, &models.Reply{}, "1 = 1"))
	assert.Zero(t, count(t, gdb, &models.Vote{}, "1 = 1"))

	channels, err := repo.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, other.ID, channels[0].ID)
	assert.Equal(t, "bob", channels[0].CreatedByUsername)
}

func TestCreateUserConflict(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "hash", false)
	assert.True(t, utils.IsErrorCode(err, utils.ErrConflict))

	u, err := repo.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}
