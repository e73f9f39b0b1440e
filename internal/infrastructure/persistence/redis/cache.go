package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
)

var cacheTracer = otel.Tracer("redis.cache")

// CachedJobRepository 为任务读取加一层 Read-Through 缓存
type CachedJobRepository struct {
	repository.JobRepository
	client *Client
	ttl    time.Duration
	group  singleflight.Group
}

var _ repository.JobRepository = (*CachedJobRepository)(nil)

// NewCachedJobRepository 创建带缓存的任务仓储
func NewCachedJobRepository(inner repository.JobRepository, client *Client, ttl time.Duration) *CachedJobRepository {
	return &CachedJobRepository{
		JobRepository: inner,
		client:        client,
		ttl:           ttl,
	}
}

func (r *CachedJobRepository) key(id string) string {
	return r.client.Key("job", id)
}

// GetByID 先读缓存，未命中时使用 singleflight 合并并发回源
//
// 只缓存已结束的任务，运行中的任务状态仍在变化。
func (r *CachedJobRepository) GetByID(ctx context.Context, id string) (*entity.GenerationJob, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.GetJob",
		trace.WithAttributes(attribute.String("cache.key", r.key(id))))
	defer span.End()

	if data, err := r.client.rdb.Get(ctx, r.key(id)).Bytes(); err == nil {
		var job entity.GenerationJob
		if err := json.Unmarshal(data, &job); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &job, nil
		}
	} else if !IsNil(err) {
		// 缓存不可用时直接回源
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	result, err, shared := r.group.Do(id, func() (interface{}, error) {
		job, err := r.JobRepository.GetByID(ctx, id)
		if err != nil || job == nil {
			return job, err
		}
		if job.IsTerminal() {
			if data, err := json.Marshal(job); err == nil {
				if err := r.client.rdb.Set(ctx, r.key(id), data, r.ttl).Err(); err != nil {
					// 缓存写入失败不影响返回结果
					span.RecordError(err)
				}
			}
		}
		return job, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))

	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	job, _ := result.(*entity.GenerationJob)
	return job, nil
}

// Update 写库后删除缓存
func (r *CachedJobRepository) Update(ctx context.Context, job *entity.GenerationJob) error {
	if err := r.JobRepository.Update(ctx, job); err != nil {
		return err
	}
	if err := r.client.rdb.Del(ctx, r.key(job.ID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate job cache: %w", err)
	}
	return nil
}
