package handlers

import (
	"net/http"

	"chanboard/internal/repository"
	"chanboard/internal/services"
	"chanboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type ReplyHandler struct {
	repo    *repository.Repository
	threads *services.ThreadService
}

func NewReplyHandler(repo *repository.Repository, threads *services.ThreadService) *ReplyHandler {
	return &ReplyHandler{repo: repo, threads: threads}
}

func (h *ReplyHandler) List(c *gin.Context) {
	post, ok := loadPost(c, h.repo)
	if !ok {
		return
	}

	forest, err := h.threads.GetThread(c.Request.Context(), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forest)
}

type createReplyRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

func (h *ReplyHandler) Create(c *gin.Context) {
	post, ok := loadPost(c, h.repo)
	if !ok {
		return
	}

	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	// 顶层回复时客户端传 parent_id: 0
	if req.ParentID != nil && *req.ParentID == 0 {
		req.ParentID = nil
	}

	reply, err := h.threads.PostReply(c.Request.Context(), caller(c), post.ID, req.ParentID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// Delete 删除回复及其整棵子树（仅管理员）
func (h *ReplyHandler) Delete(c *gin.Context) {
	post, ok := loadPost(c, h.repo)
	if !ok {
		return
	}
	replyID, ok := paramID(c, "replyId")
	if !ok {
		return
	}

	reply, err := h.repo.GetReply(c.Request.Context(), replyID)
	if err != nil {
		respondError(c, err)
		return
	}
	if reply.PostID != post.ID {
		respondError(c, utils.NewNotFoundError("reply", replyID))
		return
	}

	if _, err := h.threads.DeleteReply(c.Request.Context(), caller(c), replyID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
