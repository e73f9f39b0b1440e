// Package memory 提供进程内的会话存储，用于未启用 Redis 的部署
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
)

type storedBatch struct {
	batch     entity.SessionBatch
	expiresAt time.Time
}

type holder struct {
	generationID string
	expiresAt    time.Time
}

// SessionStore 基于 LRU 的会话存储
//
// 结果缓存受容量和 maxTTL 双重限制，单次写入的 ttl 更短时按写入值过期。
type SessionStore struct {
	batches *expirable.LRU[string, storedBatch]

	mu       sync.Mutex
	inflight map[string]holder
	now      func() time.Time
}

var _ repository.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建进程内会话存储
func NewSessionStore(capacity int, maxTTL time.Duration) *SessionStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &SessionStore{
		batches:  expirable.NewLRU[string, storedBatch](capacity, nil, maxTTL),
		inflight: make(map[string]holder),
		now:      time.Now,
	}
}

// Acquire 占用会话
func (s *SessionStore) Acquire(_ context.Context, sessionID, generationID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if h, ok := s.inflight[sessionID]; ok && now.Before(h.expiresAt) {
		return repository.ErrGenerationInFlight
	}
	s.inflight[sessionID] = holder{generationID: generationID, expiresAt: now.Add(ttl)}
	return nil
}

// Release 释放会话，只删除自己持有的占用
func (s *SessionStore) Release(_ context.Context, sessionID, generationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.inflight[sessionID]; ok && h.generationID == generationID {
		delete(s.inflight, sessionID)
	}
	return nil
}

// SaveBatch 保存最近一次生成结果
func (s *SessionStore) SaveBatch(_ context.Context, batch *entity.SessionBatch, ttl time.Duration) error {
	s.batches.Add(batch.SessionID, storedBatch{
		batch:     *batch,
		expiresAt: s.now().Add(ttl),
	})
	return nil
}

// LatestBatch 读取最近一次生成结果
func (s *SessionStore) LatestBatch(_ context.Context, sessionID string) (*entity.SessionBatch, error) {
	stored, ok := s.batches.Get(sessionID)
	if !ok {
		return nil, repository.ErrBatchNotFound
	}
	if !s.now().Before(stored.expiresAt) {
		s.batches.Remove(sessionID)
		return nil, repository.ErrBatchNotFound
	}
	batch := stored.batch
	return &batch, nil
}

// Len 当前保存的会话数
func (s *SessionStore) Len() int {
	return s.batches.Len()
}
