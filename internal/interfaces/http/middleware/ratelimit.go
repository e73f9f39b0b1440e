// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"idea-forge-api/pkg/errors"
	"idea-forge-api/pkg/logger"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool
	// Scope 限流维度，用于区分不同路由组的计数
	Scope string
	// Limit 窗口内允许的请求数
	Limit int
	// Window 窗口长度
	Window time.Duration
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	BuildRateLimitKey(scope, subject string) string
}

// RateLimit 限流中间件，按会话计数，没有会话时按客户端 IP
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	// 如果未启用限流，返回空中间件
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	// 设置默认值
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.Scope == "" {
		cfg.Scope = "api"
	}

	return func(c *gin.Context) {
		subject := c.Param("sid")
		if subject == "" {
			subject = c.ClientIP()
		}
		key := limiter.BuildRateLimitKey(cfg.Scope, subject)

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			// 限流器故障时放行，避免影响业务
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(cfg.Window.Seconds()))))
			abortWithError(c, errors.ErrTooManyRequests,
				fmt.Sprintf("at most %d requests per %s for %s", cfg.Limit, cfg.Window, cfg.Scope))
			return
		}

		c.Next()
	}
}
