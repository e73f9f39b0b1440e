package service

import (
	"context"

	"idea-forge-api/internal/domain/entity"
)

// GenerationOutput 生成服务的原始输出，数量与内容尚未校验
type GenerationOutput struct {
	Ideas    []entity.Idea
	Provider string
	Model    string
}

// IdeaGenerator 创意生成服务
//
// 实现方只负责调用模型并解析结果，数量校验与不变量校验由调用方完成。
type IdeaGenerator interface {
	Generate(ctx context.Context, req entity.GenerationRequest) (*GenerationOutput, error)
}

// IdeaGeneratorFunc 函数适配器
type IdeaGeneratorFunc func(ctx context.Context, req entity.GenerationRequest) (*GenerationOutput, error)

// Generate 实现 IdeaGenerator
func (f IdeaGeneratorFunc) Generate(ctx context.Context, req entity.GenerationRequest) (*GenerationOutput, error) {
	return f(ctx, req)
}
