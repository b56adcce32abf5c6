package handlers

import (
	"net/http"

	"chanboard/internal/middleware"
	"chanboard/internal/models"
	"chanboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError 统一错误响应 {error, code}
// 服务端错误记录完整错误链，对外只返回通用提示
func respondError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		middleware.Log(c).WithError(err).Error("request failed")
	}
	c.JSON(status, gin.H{"error": utils.PublicMessage(err), "code": utils.CodeOf(err)})
}

func badRequest(c *gin.Context, message string) {
	respondError(c, utils.NewValidationError("%s", message))
}

// paramID 解析数字路由参数，非法时直接返回 400
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	return id, true
}

// caller 仅在 middleware.AuthRequired 之后可用
func caller(c *gin.Context) models.Identity {
	identity, _ := middleware.CurrentIdentity(c)
	return identity
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
