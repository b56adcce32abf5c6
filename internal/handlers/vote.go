package handlers

import (
	"net/http"

	"chanboard/internal/models"
	"chanboard/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	threads *services.ThreadService
}

func NewVoteHandler(threads *services.ThreadService) *VoteHandler {
	return &VoteHandler{threads: threads}
}

type voteRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	ContentID   uint   `json:"content_id" binding:"required"`
	VoteValue   *int   `json:"vote_value" binding:"required"`
}

// Vote 对帖子或回复投票，vote_value 为 0 表示撤销
func (h *VoteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content_type, content_id and vote_value are required")
		return
	}

	targetType, ok := models.ParseTargetType(req.ContentType)
	if !ok {
		badRequest(c, "Invalid content type")
		return
	}
	if !models.ValidVoteValue(*req.VoteValue) {
		badRequest(c, "vote_value must be -1, 0 or 1")
		return
	}

	result, err := h.threads.Vote(c.Request.Context(), caller(c), targetType, req.ContentID, *req.VoteValue)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"newScore": result.NewScore,
		"userVote": result.UserVote,
	})
}

// Status 查询当前用户的投票，未投票为 0
func (h *VoteHandler) Status(c *gin.Context) {
	targetType, ok := models.ParseTargetType(c.Param("contentType"))
	if !ok {
		badRequest(c, "Invalid content type")
		return
	}
	id, ok := paramID(c, "contentId")
	if !ok {
		return
	}

	value, err := h.threads.VoteStatus(c.Request.Context(), caller(c), targetType, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userVote": value})
}
