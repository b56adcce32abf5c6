package handlers

import (
	"net/http"

	"chanboard/internal/middleware"
	"chanboard/internal/models"
	"chanboard/internal/repository"
	"chanboard/internal/services"
	"chanboard/internal/thread"
	"chanboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PostHandler struct {
	repo    *repository.Repository
	threads *services.ThreadService
}

func NewPostHandler(repo *repository.Repository, threads *services.ThreadService) *PostHandler {
	return &PostHandler{repo: repo, threads: threads}
}

func (h *PostHandler) List(c *gin.Context) {
	channelID, ok := paramID(c, "channelId")
	if !ok {
		return
	}

	posts, err := h.repo.ListPosts(c.Request.Context(), channelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *PostHandler) Create(c *gin.Context) {
	channelID, ok := paramID(c, "channelId")
	if !ok {
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	post, err := h.repo.CreatePost(c.Request.Context(), channelID, caller(c).UserID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	post.ContentHTML = utils.RenderMarkdown(post.Content)
	c.JSON(http.StatusCreated, post)
}

type postDetail struct {
	*models.Post
	Replies []*models.ReplyNode `json:"replies"`
}

// Get 帖子详情，附带回复树
func (h *PostHandler) Get(c *gin.Context) {
	post, ok := loadPost(c, h.repo)
	if !ok {
		return
	}

	replies, err := h.threads.GetThread(c.Request.Context(), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	post.ContentHTML = utils.RenderMarkdown(post.Content)
	post.ReplyCount = thread.Size(replies)
	c.JSON(http.StatusOK, postDetail{Post: post, Replies: replies})
}

// Delete 删除帖子（仅管理员）
func (h *PostHandler) Delete(c *gin.Context) {
	channelID, ok := paramID(c, "channelId")
	if !ok {
		return
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}

	if err := h.repo.DeletePost(c.Request.Context(), channelID, postID); err != nil {
		respondError(c, err)
		return
	}
	h.threads.ForgetThread(c.Request.Context(), postID)

	middleware.Log(c).WithFields(logrus.Fields{"post_id": postID, "admin": caller(c).Username}).Info("post deleted")
	c.Status(http.StatusNoContent)
}

// loadPost 解析 :channelId/:postId，出错时自行返回 400/404
func loadPost(c *gin.Context, repo *repository.Repository) (*models.Post, bool) {
	channelID, ok := paramID(c, "channelId")
	if !ok {
		return nil, false
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return nil, false
	}

	post, err := repo.GetPost(c.Request.Context(), channelID, postID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return post, true
}
