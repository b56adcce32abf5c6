package services

import (
	"context"
	"sync"

	"chanboard/internal/cache"
	"chanboard/internal/models"
	"chanboard/internal/thread"
	"chanboard/internal/utils"

	"github.com/sirupsen/logrus"
)

// ThreadStore is the persistence ThreadService drives.
type ThreadStore interface {
	PostExists(ctx context.Context, postID uint) (bool, error)
	CreateReply(ctx context.Context, postID uint, parentID *uint, authorID uint, content string) (*models.Reply, error)
	ListReplies(ctx context.Context, postID uint) ([]models.Reply, error)
	GetReply(ctx context.Context, id uint) (*models.Reply, error)
	DeleteReply(ctx context.Context, id uint) (*models.Reply, int, error)
	CastVote(ctx context.Context, userID uint, targetType models.TargetType, targetID uint, value int) (*models.VoteResult, error)
	GetVoteStatus(ctx context.Context, userID uint, targetType models.TargetType, targetID uint) (int, error)
}

// ThreadService handles replies and votes on behalf of an already
// authenticated caller, keeping the cached reply forests in step with writes.
type ThreadService struct {
	store      ThreadStore
	cache      cache.Cache
	reconciler *ScoreReconciler

	// generations[postID] is bumped on every invalidation. A forest read
	// under an older generation is never written back to the cache.
	mu          sync.Mutex
	generations map[uint]uint64
}

// NewThreadService wires the service. reconciler may be nil.
func NewThreadService(store ThreadStore, c cache.Cache, reconciler *ScoreReconciler) *ThreadService {
	s := &ThreadService{
		store:       store,
		cache:       c,
		reconciler:  reconciler,
		generations: make(map[uint]uint64),
	}
	if reconciler != nil {
		reconciler.OnRepair(s.invalidateTarget)
	}
	return s
}

func (s *ThreadService) PostReply(ctx context.Context, caller models.Identity, postID uint, parentID *uint, content string) (*models.Reply, error) {
	reply, err := s.store.CreateReply(ctx, postID, parentID, caller.UserID, content)
	if err != nil {
		return nil, err
	}
	reply.ContentHTML = utils.RenderReplyMarkdown(reply.Content)

	s.invalidate(ctx, postID)
	logrus.WithFields(logrus.Fields{
		"post_id":  postID,
		"reply_id": reply.ID,
		"user_id":  caller.UserID,
	}).Debug("reply created")
	return reply, nil
}

// GetThread returns the post's replies as a forest, [] when there are none.
func (s *ThreadService) GetThread(ctx context.Context, postID uint) ([]*models.ReplyNode, error) {
	exists, err := s.store.PostExists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewNotFoundError("post", postID)
	}

	key := cache.ThreadKey(postID)
	generation := s.generation(postID)
	var cached []*models.ReplyNode
	if s.cache.Get(ctx, key, &cached) && cached != nil {
		logrus.WithField("post_id", postID).Debug("thread cache hit")
		return cached, nil
	}

	replies, err := s.store.ListReplies(ctx, postID)
	if err != nil {
		return nil, err
	}
	for i := range replies {
		replies[i].ContentHTML = utils.RenderReplyMarkdown(replies[i].Content)
	}

	forest, err := thread.BuildForest(replies)
	if err != nil {
		logrus.WithError(err).WithField("post_id", postID).Error("stored thread is malformed")
		return nil, err
	}

	s.storeIfCurrent(ctx, postID, generation, forest)
	return forest, nil
}

func (s *ThreadService) Vote(ctx context.Context, caller models.Identity, targetType models.TargetType, targetID uint, value int) (*models.VoteResult, error) {
	result, err := s.store.CastVote(ctx, caller.UserID, targetType, targetID, value)
	if err != nil {
		return nil, err
	}

	target := models.VoteTarget{Type: targetType, ID: targetID}
	s.invalidateTarget(ctx, target)
	if s.reconciler != nil {
		s.reconciler.Schedule(target)
	}
	return result, nil
}

func (s *ThreadService) VoteStatus(ctx context.Context, caller models.Identity, targetType models.TargetType, targetID uint) (int, error) {
	return s.store.GetVoteStatus(ctx, caller.UserID, targetType, targetID)
}

// DeleteReply removes a reply and its subtree. Only admins may call it.
func (s *ThreadService) DeleteReply(ctx context.Context, caller models.Identity, replyID uint) (int, error) {
	if !caller.IsAdmin {
		return 0, utils.NewForbiddenError("admin access required")
	}

	deleted, removed, err := s.store.DeleteReply(ctx, replyID)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, deleted.PostID)
	logrus.WithFields(logrus.Fields{
		"reply_id": replyID,
		"post_id":  deleted.PostID,
		"removed":  removed,
		"admin":    caller.Username,
	}).Info("reply subtree deleted")
	return removed, nil
}

// ForgetThread drops a post's cached forest, for callers that delete posts.
func (s *ThreadService) ForgetThread(ctx context.Context, postID uint) {
	s.invalidate(ctx, postID)
}

func (s *ThreadService) invalidate(ctx context.Context, postID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[postID]++
	s.cache.Delete(ctx, cache.ThreadKey(postID))
}

func (s *ThreadService) generation(postID uint) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[postID]
}

// storeIfCurrent caches forest unless the post was invalidated after the
// read began; a write that landed mid-read would otherwise be hidden until
// the entry expires.
func (s *ThreadService) storeIfCurrent(ctx context.Context, postID uint, readAt uint64, forest []*models.ReplyNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[postID] != readAt {
		logrus.WithField("post_id", postID).Debug("thread changed during read, not caching")
		return
	}
	s.cache.Set(ctx, cache.ThreadKey(postID), forest)
}

// invalidateTarget drops the forest holding a reply target. Post scores are
// not part of any cached forest.
func (s *ThreadService) invalidateTarget(ctx context.Context, target models.VoteTarget) {
	if target.Type != models.TargetReply {
		return
	}
	reply, err := s.store.GetReply(ctx, target.ID)
	if err != nil {
		logrus.WithError(err).WithField("reply_id", target.ID).Warn("could not resolve reply for cache invalidation")
		return
	}
	s.invalidate(ctx, reply.PostID)
}
