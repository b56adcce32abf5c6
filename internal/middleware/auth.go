package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"chanboard/internal/models"
	"chanboard/internal/utils"

	"github.com/gin-gonic/gin"
)

const IdentityKey = "identity"

const (
	HeaderUserID   = "X-User-ID"
	HeaderUsername = "X-Username"
	HeaderIsAdmin  = "X-Is-Admin"
)

// AuthRequired 登录校验中间件
// 从客户端登录后携带的身份请求头解析调用者，缺失时返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		username := strings.TrimSpace(c.GetHeader(HeaderUsername))
		if rawID == "" || username == "" {
			abort(c, http.StatusUnauthorized, utils.ErrUnauthorized, "authentication required")
			return
		}

		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || id == 0 {
			abort(c, http.StatusUnauthorized, utils.ErrUnauthorized, "invalid user id")
			return
		}

		c.Set(IdentityKey, models.Identity{
			UserID:   uint(id),
			Username: username,
			IsAdmin:  c.GetHeader(HeaderIsAdmin) == "1",
		})
		c.Next()
	}
}

// AdminRequired 管理员校验，必须放在 AuthRequired 之后
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, utils.ErrUnauthorized, "authentication required")
			return
		}
		if !identity.IsAdmin {
			abort(c, http.StatusForbidden, utils.ErrForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

// CurrentIdentity 获取 AuthRequired 写入的当前用户
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}
