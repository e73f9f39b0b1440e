// Package router 提供 HTTP 路由配置
package router

import (
	"time"

	"idea-forge-api/internal/config"
	"idea-forge-api/internal/interfaces/http/handler"
	"idea-forge-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health     *handler.HealthHandler
	Form       *handler.FormHandler
	Generation *handler.GenerationHandler
	Export     *handler.ExportHandler
	Job        *handler.JobHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建新的路由器，limiter 为空时不限流
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods:   r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders:   r.cfg.Security.CORS.AllowedHeaders,
		ExposedHeaders:   r.cfg.Security.CORS.ExposedHeaders,
		AllowCredentials: r.cfg.Security.CORS.AllowCredentials,
		MaxAge:           r.cfg.Security.CORS.MaxAge,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.cfg.Observability.Metrics.Path))
	}

	r.engine.Use(middleware.Audit(middleware.AuditConfig{
		Enabled:   true,
		SkipPaths: middleware.DefaultAuditSkipPaths,
	}))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	healthHandler := r.handlers.Health
	if healthHandler == nil {
		healthHandler = handler.NewHealthHandler(nil, nil)
	}

	// 系统端点
	r.engine.GET("/health", healthHandler.Health)
	r.engine.GET("/ready", healthHandler.Ready)
	r.engine.GET("/live", healthHandler.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	rl := r.cfg.Security.RateLimit
	apiLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled: rl.Enabled,
		Scope:   "api",
		Limit:   rl.RequestsPerSecond,
		Window:  time.Second,
	}, r.limiter)
	generationLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled: rl.Enabled,
		Scope:   "generate",
		Limit:   rl.GenerationsPerMinute,
		Window:  time.Minute,
	}, r.limiter)

	// API v1 路由组
	v1 := r.engine.Group("/v1", apiLimit)
	RegisterV1Routes(v1, r.handlers, generationLimit)
}
