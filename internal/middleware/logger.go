package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDKey    = "request_id"
	HeaderRequestID = "X-Request-ID"
)

// RequestLogger 请求日志中间件
// 为每个请求分配 ID（客户端带了 X-Request-ID 则沿用），请求结束后记录一条日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		entry := Log(c).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		if identity, ok := CurrentIdentity(c); ok {
			entry = entry.WithField("user_id", identity.UserID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// Log 返回带请求 ID 的日志条目
func Log(c *gin.Context) *logrus.Entry {
	if id, ok := c.Get(RequestIDKey); ok {
		return logrus.WithField(RequestIDKey, id)
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
