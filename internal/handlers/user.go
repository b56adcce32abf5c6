package handlers

import (
	"net/http"

	"chanboard/internal/middleware"
	"chanboard/internal/repository"
	"chanboard/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	repo    *repository.Repository
	threads *services.ThreadService
}

func NewUserHandler(repo *repository.Repository, threads *services.ThreadService) *UserHandler {
	return &UserHandler{repo: repo, threads: threads}
}

// Delete 删除用户及其帖子、回复和投票（仅管理员）
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	changed, err := h.repo.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, postID := range changed {
		h.threads.ForgetThread(c.Request.Context(), postID)
	}

	middleware.Log(c).WithFields(logrus.Fields{
		"user_id":       userID,
		"threads_reset": len(changed),
		"admin":         caller(c).Username,
	}).Info("user deleted")
	c.Status(http.StatusNoContent)
}
