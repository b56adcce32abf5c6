package handlers

import (
	"net/http"

	"chanboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	repo *repository.Repository
}

func NewChannelHandler(repo *repository.Repository) *ChannelHandler {
	return &ChannelHandler{repo: repo}
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.repo.ListChannels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channels)
}

type createChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	channel, err := h.repo.CreateChannel(c.Request.Context(), req.Name, req.Description, caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (h *ChannelHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "channelId")
	if !ok {
		return
	}

	channel, err := h.repo.GetChannel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

// Delete 删除频道（仅管理员）
func (h *ChannelHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "channelId")
	if !ok {
		return
	}

	if err := h.repo.DeleteChannel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
