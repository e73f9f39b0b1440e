// Package middleware 提供 HTTP 中间件
package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"idea-forge-api/pkg/logger"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"

	// gin.Context 中的键
	ctxKeyRequestID = "request_id"
	ctxKeySessionID = "session_id"
)

// 客户端传入的请求 ID 只接受短的安全字符，否则重新生成，避免污染日志
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// RequestID 注入请求 ID 与会话 ID 到请求上下文
//
// 会话 ID 取自路由参数 :sid，路由未匹配时为空。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID.MatchString(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID)
		if sid := c.Param("sid"); sid != "" {
			c.Set(ctxKeySessionID, sid)
			ctx = logger.WithContext(ctx, logger.SessionIDKey, sid)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
