// Package model 定义工作流的输入输出
package model

import (
	"idea-forge-api/internal/domain/entity"
)

// IdeaBatchInput 创意批量生成的输入
type IdeaBatchInput struct {
	Request entity.GenerationRequest

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}
