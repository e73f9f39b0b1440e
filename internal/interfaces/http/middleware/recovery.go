// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"idea-forge-api/internal/interfaces/http/dto"
	"idea-forge-api/pkg/errors"
	"idea-forge-api/pkg/logger"
)

// Recovery Panic 恢复中间件，返回与业务接口一致的错误信封
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"route", c.FullPath(),
				"method", c.Request.Method,
			)
			// 响应已经开始写出时只能中断
			if c.Writer.Written() {
				c.Abort()
				return
			}
			abortWithError(c, errors.ErrInternalError, "")
		}()

		c.Next()
	}
}

// abortWithError 中断请求并写入统一错误响应
func abortWithError(c *gin.Context, appErr *errors.AppError, detail string) {
	c.Abort()
	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Details:   detail,
	})
}
