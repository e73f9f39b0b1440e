// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"idea-forge-api/internal/domain/entity"
)

// JobRepository 生成任务仓储接口
type JobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.GenerationJob) error

	// GetByID 根据 ID 获取任务，不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.GenerationJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.GenerationJob) error

	// ListBySession 获取会话任务列表，按创建时间倒序
	ListBySession(ctx context.Context, sessionID string, status entity.JobStatus, pagination Pagination) (*PagedResult[*entity.GenerationJob], error)
}
