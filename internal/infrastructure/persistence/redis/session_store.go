package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
)

// releaseScript 仅当持有者匹配时删除占用键
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore 基于 Redis 的会话存储
type SessionStore struct {
	client *Client
}

var _ repository.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建会话存储
func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) batchKey(sessionID string) string {
	return s.client.Key("session", sessionID, "batch")
}

func (s *SessionStore) inflightKey(sessionID string) string {
	return s.client.Key("session", sessionID, "inflight")
}

// Acquire 通过 SET NX 占用会话
func (s *SessionStore) Acquire(ctx context.Context, sessionID, generationID string, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "redis.SessionStore.Acquire",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	ok, err := s.client.rdb.SetNX(ctx, s.inflightKey(sessionID), generationID, ttl).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to acquire session guard: %w", err)
	}
	span.SetAttributes(attribute.Bool("session.acquired", ok))
	if !ok {
		return repository.ErrGenerationInFlight
	}
	return nil
}

// Release 释放会话占用
func (s *SessionStore) Release(ctx context.Context, sessionID, generationID string) error {
	ctx, span := tracer.Start(ctx, "redis.SessionStore.Release",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	if err := releaseScript.Run(ctx, s.client.rdb, []string{s.inflightKey(sessionID)}, generationID).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to release session guard: %w", err)
	}
	return nil
}

// SaveBatch 保存最近一次生成结果
func (s *SessionStore) SaveBatch(ctx context.Context, batch *entity.SessionBatch, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "redis.SessionStore.SaveBatch",
		trace.WithAttributes(attribute.String("session.id", batch.SessionID)))
	defer span.End()

	data, err := json.Marshal(batch)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal batch: %w", err)
	}
	if err := s.client.Set(ctx, s.batchKey(batch.SessionID), data, ttl); err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

// LatestBatch 读取最近一次生成结果
func (s *SessionStore) LatestBatch(ctx context.Context, sessionID string) (*entity.SessionBatch, error) {
	ctx, span := tracer.Start(ctx, "redis.SessionStore.LatestBatch",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	data, err := s.client.Get(ctx, s.batchKey(sessionID))
	if err != nil {
		if IsNil(err) {
			return nil, repository.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}

	var batch entity.SessionBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal batch: %w", err)
	}
	return &batch, nil
}
