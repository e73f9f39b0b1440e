// Package ideagen 编排一次创意生成：请求校验、会话占用、调用生成服务、保存结果
package ideagen

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"idea-forge-api/internal/application/request"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
	"idea-forge-api/internal/domain/service"
	"idea-forge-api/pkg/logger"
	"idea-forge-api/pkg/metrics"
)

var tracer = otel.Tracer("ideagen")

// Config 生成服务配置
type Config struct {
	Timeout     time.Duration
	BatchTTL    time.Duration
	InFlightTTL time.Duration
}

// Service 创意生成服务
type Service struct {
	generator service.IdeaGenerator
	store     repository.SessionStore
	jobs      repository.JobRepository // 可为空
	cfg       Config
	now       func() time.Time
	newID     func() string
	reads     singleflight.Group
}

// NewService 创建生成服务，jobs 为空时不记录任务
func NewService(generator service.IdeaGenerator, store repository.SessionStore, jobs repository.JobRepository, cfg Config) *Service {
	if cfg.InFlightTTL <= 0 {
		cfg.InFlightTTL = cfg.Timeout + time.Minute
	}
	if cfg.BatchTTL <= 0 {
		cfg.BatchTTL = 24 * time.Hour
	}
	return &Service{
		generator: generator,
		store:     store,
		jobs:      jobs,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Generate 校验草稿并为会话生成一批创意
//
// 同一会话同时只允许一个生成，失败不会自动重试，也不会覆盖会话中已有的结果。
func (s *Service) Generate(ctx context.Context, sessionID string, draft *request.RequestDraft) (*entity.SessionBatch, error) {
	req, err := draft.Build()
	if err != nil {
		var verr *request.ValidationError
		if errors.As(err, &verr) {
			metrics.RequestValidationTotal.WithLabelValues(verr.Field, "rejected").Inc()
		}
		return nil, err
	}
	metrics.RequestValidationTotal.WithLabelValues("", "accepted").Inc()

	return s.GenerateRequest(ctx, sessionID, req)
}

// GenerateRequest 使用已校验的请求生成
func (s *Service) GenerateRequest(ctx context.Context, sessionID string, req entity.GenerationRequest) (*entity.SessionBatch, error) {
	generationID := s.newID()
	ctx = logger.WithContext(ctx, logger.SessionIDKey, sessionID)
	ctx = logger.WithContext(ctx, logger.GenerationIDKey, generationID)

	ctx, span := tracer.Start(ctx, "ideagen.Generate")
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("generation.id", generationID),
		attribute.String("generation.mode", string(req.Mode())),
	)
	defer span.End()

	if err := s.store.Acquire(ctx, sessionID, generationID, s.cfg.InFlightTTL); err != nil {
		if !errors.Is(err, repository.ErrGenerationInFlight) {
			span.RecordError(err)
		}
		return nil, err
	}
	defer func() {
		// 请求上下文可能已取消，释放占用使用独立上下文
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.store.Release(releaseCtx, sessionID, generationID); err != nil {
			logger.Warn(ctx, "failed to release session guard", "error", err.Error())
		}
	}()

	job := s.startJob(ctx, generationID, sessionID, req)

	metrics.IdeaGenerationInFlight.Inc()
	start := s.now()
	batch, out, err := s.invoke(ctx, req)
	elapsed := s.now().Sub(start)
	metrics.IdeaGenerationInFlight.Dec()
	metrics.IdeaGenerationDuration.WithLabelValues(string(req.Mode())).Observe(elapsed.Seconds())

	if err != nil {
		metrics.IdeaGenerationTotal.WithLabelValues(string(req.Mode()), "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "idea generation failed", err, "duration_ms", elapsed.Milliseconds())
		s.finishJob(ctx, job, out, nil, err)
		return nil, err
	}

	result := &entity.SessionBatch{
		GenerationID: generationID,
		SessionID:    sessionID,
		Ideas:        batch,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.SaveBatch(ctx, result, s.cfg.BatchTTL); err != nil {
		metrics.IdeaGenerationTotal.WithLabelValues(string(req.Mode()), "failed").Inc()
		span.RecordError(err)
		s.finishJob(ctx, job, out, nil, err)
		return nil, err
	}

	metrics.IdeaGenerationTotal.WithLabelValues(string(req.Mode()), "succeeded").Inc()
	logger.Info(ctx, "idea generation completed",
		"provider", out.Provider,
		"model", out.Model,
		"duration_ms", elapsed.Milliseconds(),
	)
	s.finishJob(ctx, job, out, result, nil)
	return result, nil
}

// invoke 调用生成服务并校验结果，任何不合格都视为 GenerationFailure
func (s *Service) invoke(ctx context.Context, req entity.GenerationRequest) (entity.IdeaBatch, *service.GenerationOutput, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	out, err := s.generator.Generate(ctx, req)
	if err != nil {
		var failure *entity.GenerationFailure
		if errors.As(err, &failure) {
			return entity.IdeaBatch{}, out, err
		}
		return entity.IdeaBatch{}, out, &entity.GenerationFailure{Cause: err}
	}
	if out == nil {
		return entity.IdeaBatch{}, nil, &entity.GenerationFailure{Cause: errors.New("generator returned no output")}
	}

	batch, err := entity.NewIdeaBatch(out.Ideas)
	if err != nil {
		var failure *entity.GenerationFailure
		if errors.As(err, &failure) {
			failure.Provider = out.Provider
		}
		return entity.IdeaBatch{}, out, err
	}
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return entity.IdeaBatch{}, out, &entity.GenerationFailure{
				Provider: out.Provider,
				Cause:    errors.Join(errors.New("generated idea is incomplete"), err),
			}
		}
	}
	return batch, out, nil
}

func (s *Service) startJob(ctx context.Context, id, sessionID string, req entity.GenerationRequest) *entity.GenerationJob {
	if s.jobs == nil {
		return nil
	}
	job, err := entity.NewGenerationJob(id, sessionID, req)
	if err != nil {
		logger.Warn(ctx, "failed to build generation job", "error", err.Error())
		return nil
	}
	job.Start()
	if err := s.jobs.Create(ctx, job); err != nil {
		// 审计记录失败不影响生成
		logger.Warn(ctx, "failed to record generation job", "error", err.Error())
		return nil
	}
	return job
}

func (s *Service) finishJob(ctx context.Context, job *entity.GenerationJob, out *service.GenerationOutput, result *entity.SessionBatch, genErr error) {
	if job == nil {
		return
	}
	if out != nil {
		job.SetProvider(out.Provider, out.Model)
	}
	if genErr != nil {
		job.Fail(genErr.Error())
	} else {
		data, err := json.Marshal(result.Ideas)
		if err != nil {
			job.Fail(err.Error())
		} else {
			job.Complete(data)
		}
	}
	if err := s.jobs.Update(context.WithoutCancel(ctx), job); err != nil {
		logger.Warn(ctx, "failed to update generation job", "error", err.Error())
	}
}

// Latest 读取会话最近一次生成结果，并发读取合并为一次存储访问
func (s *Service) Latest(ctx context.Context, sessionID string) (*entity.SessionBatch, error) {
	v, err, _ := s.reads.Do(sessionID, func() (interface{}, error) {
		return s.store.LatestBatch(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	batch := *v.(*entity.SessionBatch)
	return &batch, nil
}

// Idea 按展示序号读取会话中的单条创意
func (s *Service) Idea(ctx context.Context, sessionID string, position int) (entity.IdeaView, error) {
	batch, err := s.Latest(ctx, sessionID)
	if err != nil {
		return entity.IdeaView{}, err
	}
	idea, ok := batch.Ideas.At(position)
	if !ok {
		return entity.IdeaView{}, ErrPositionOutOfRange
	}
	return entity.NewIdeaView(position, idea), nil
}

// Job 查询生成任务记录
func (s *Service) Job(ctx context.Context, generationID string) (*entity.GenerationJob, error) {
	if s.jobs == nil {
		return nil, ErrJobsDisabled
	}
	job, err := s.jobs.GetByID(ctx, generationID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// SessionJobs 分页查询会话的生成任务
func (s *Service) SessionJobs(ctx context.Context, sessionID string, status entity.JobStatus, page repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	if s.jobs == nil {
		return nil, ErrJobsDisabled
	}
	return s.jobs.ListBySession(ctx, sessionID, status, page)
}

var (
	// ErrPositionOutOfRange 序号不在 1..3 之间
	ErrPositionOutOfRange = errors.New("idea position out of range")
	// ErrJobNotFound 任务不存在
	ErrJobNotFound = errors.New("generation job not found")
	// ErrJobsDisabled 未启用任务记录
	ErrJobsDisabled = errors.New("generation job history is disabled")
)
