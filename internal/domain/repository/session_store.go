// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"
	"time"

	"idea-forge-api/internal/domain/entity"
)

var (
	// ErrBatchNotFound 会话中没有生成结果
	ErrBatchNotFound = errors.New("no generated ideas in session")
	// ErrGenerationInFlight 会话已有进行中的生成
	ErrGenerationInFlight = errors.New("a generation is already in flight for this session")
)

// InFlightGuard 保证每个会话同时最多一个进行中的生成
type InFlightGuard interface {
	// Acquire 占用会话，已被占用时返回 ErrGenerationInFlight
	// ttl 为兜底过期时间，防止进程崩溃后会话被永久锁住
	Acquire(ctx context.Context, sessionID, generationID string, ttl time.Duration) error

	// Release 释放会话，只释放自己持有的占用
	Release(ctx context.Context, sessionID, generationID string) error
}

// SessionStore 会话级的生成结果存储
type SessionStore interface {
	InFlightGuard

	// SaveBatch 保存会话最近一次生成结果，覆盖旧值
	SaveBatch(ctx context.Context, batch *entity.SessionBatch, ttl time.Duration) error

	// LatestBatch 获取会话最近一次生成结果，不存在时返回 ErrBatchNotFound
	LatestBatch(ctx context.Context, sessionID string) (*entity.SessionBatch, error)
}
