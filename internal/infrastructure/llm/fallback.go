package llm

import (
	"context"
	"errors"
	"fmt"

	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/service"
	"idea-forge-api/pkg/logger"
)

// Candidate 参与回退的生成器
type Candidate struct {
	Name      string
	Generator service.IdeaGenerator
}

// FallbackGenerator 按顺序尝试各提供商，直到某个返回结果
//
// 这是提供商层面的切换，不是对同一次生成的重试。上下文取消后立即停止。
type FallbackGenerator struct {
	candidates []Candidate
}

var _ service.IdeaGenerator = (*FallbackGenerator)(nil)

// NewFallbackGenerator 创建回退生成器
func NewFallbackGenerator(candidates ...Candidate) *FallbackGenerator {
	return &FallbackGenerator{candidates: candidates}
}

// Generate 实现 service.IdeaGenerator
func (g *FallbackGenerator) Generate(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
	if len(g.candidates) == 0 {
		return nil, fmt.Errorf("no llm provider configured")
	}

	var errs []error
	for i, c := range g.candidates {
		out, err := c.Generator.Generate(ctx, req)
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(append(errs, ctxErr)...)
		}
		if i < len(g.candidates)-1 {
			logger.Warn(ctx, "llm provider failed, trying next",
				"provider", c.Name,
				"next_provider", g.candidates[i+1].Name,
				"error", err.Error(),
			)
		}
	}
	return nil, errors.Join(errs...)
}
