// Package app 组装应用依赖
package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"idea-forge-api/internal/application/ideagen"
	"idea-forge-api/internal/config"
	"idea-forge-api/internal/domain/repository"
	"idea-forge-api/internal/domain/service"
	"idea-forge-api/internal/infrastructure/llm"
	"idea-forge-api/internal/infrastructure/persistence/memory"
	"idea-forge-api/internal/infrastructure/persistence/postgres"
	"idea-forge-api/internal/infrastructure/persistence/redis"
	"idea-forge-api/internal/interfaces/http/handler"
	"idea-forge-api/internal/interfaces/http/middleware"
	"idea-forge-api/internal/interfaces/http/router"
	"idea-forge-api/pkg/logger"
)

// jobCacheTTL 已结束任务在 Redis 中的缓存时长
const jobCacheTTL = 10 * time.Minute

// App 应用依赖容器
type App struct {
	Router  *router.Router
	Service *ideagen.Service

	PgClient    *postgres.Client
	RedisClient *redis.Client
}

// Engine 返回 Gin Engine
func (a *App) Engine() *gin.Engine {
	return a.Router.Engine()
}

// Initialize 按配置初始化应用，Redis 与 Postgres 均为可选
func Initialize(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	generator, err := llm.NewGenerator(cfg)
	if err != nil {
		return nil, nil, err
	}
	return InitializeWithGenerator(ctx, cfg, generator)
}

// InitializeWithGenerator 使用指定的生成服务初始化应用
func InitializeWithGenerator(ctx context.Context, cfg *config.Config, generator service.IdeaGenerator) (*App, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	pgClient, pgCleanup, err := ProvidePostgresClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, pgCleanup)

	redisClient, redisCleanup, err := ProvideRedisClient(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, redisCleanup)

	store := ProvideSessionStore(cfg, redisClient)
	jobs := ProvideJobRepository(pgClient, redisClient)

	svc := ideagen.NewService(generator, store, jobs, ideagen.Config{
		Timeout:     cfg.Generation.Timeout,
		BatchTTL:    cfg.Session.BatchTTL,
		InFlightTTL: cfg.Session.InFlightTTL,
	})

	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(pgClient, redisClient),
		Form:       handler.NewFormHandler(),
		Generation: handler.NewGenerationHandler(svc),
		Export:     handler.NewExportHandler(),
		Job:        handler.NewJobHandler(svc),
	}

	return &App{
		Router:      router.New(cfg, handlers, ProvideRateLimiter(redisClient)),
		Service:     svc,
		PgClient:    pgClient,
		RedisClient: redisClient,
	}, cleanup, nil
}

// ProvidePostgresClient 提供 PostgreSQL 客户端，未启用时返回 nil
func ProvidePostgresClient(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	if !cfg.Database.Postgres.Enabled {
		logger.Info(ctx, "postgres disabled, generation job history off")
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Postgres.AutoMigrate {
		if err := client.AutoMigrate(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端，未启用时返回 nil
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		logger.Info(ctx, "redis disabled, using in-memory session store")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideSessionStore 提供会话存储，Redis 不可用时使用进程内存储
func ProvideSessionStore(cfg *config.Config, redisClient *redis.Client) repository.SessionStore {
	if redisClient != nil {
		return redis.NewSessionStore(redisClient)
	}
	return memory.NewSessionStore(cfg.Session.MemoryCapacity, cfg.Session.BatchTTL)
}

// ProvideJobRepository 提供任务仓储，未启用 Postgres 时返回 nil
func ProvideJobRepository(pgClient *postgres.Client, redisClient *redis.Client) repository.JobRepository {
	if pgClient == nil {
		return nil
	}
	jobs := postgres.NewJobRepository(pgClient)
	if redisClient == nil {
		return jobs
	}
	return redis.NewCachedJobRepository(jobs, redisClient, jobCacheTTL)
}

// ProvideRateLimiter 提供限流器，未启用 Redis 时返回 nil
func ProvideRateLimiter(redisClient *redis.Client) middleware.RateLimiter {
	if redisClient == nil {
		return nil
	}
	return redis.NewRateLimiter(redisClient)
}
