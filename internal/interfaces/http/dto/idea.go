// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"idea-forge-api/internal/application/request"
	"idea-forge-api/internal/domain/entity"
)

// GenerationRequestBody 生成请求表单，字段均为原始文本，由 RequestBuilder 校验
type GenerationRequestBody struct {
	Domain            *string `json:"domain,omitempty"`
	Audience          *string `json:"audience,omitempty"`
	Difficulty        *string `json:"difficulty,omitempty"`
	TimeAvailableDays *string `json:"time_available_days,omitempty"`
	Skills            *string `json:"skills,omitempty"`
	Mode              *string `json:"mode,omitempty"`
	Constraints       *string `json:"constraints,omitempty"`
}

// ToDraft 在默认草稿上覆盖请求中出现的字段
func (b *GenerationRequestBody) ToDraft() *request.RequestDraft {
	d := request.NewRequestDraft()
	if b == nil {
		return d
	}
	set := func(field string, v *string) {
		if v != nil {
			// 字段名均为已知常量，不会出错
			_ = d.Set(field, *v)
		}
	}
	set(request.FieldDomain, b.Domain)
	set(request.FieldAudience, b.Audience)
	set(request.FieldDifficulty, b.Difficulty)
	set(request.FieldTimeAvailableDays, b.TimeAvailableDays)
	set(request.FieldSkills, b.Skills)
	set(request.FieldMode, b.Mode)
	set(request.FieldConstraints, b.Constraints)
	return d
}

// FormDefaultsResponse 表单默认值与选项
type FormDefaultsResponse struct {
	Draft  *request.RequestDraft `json:"draft"`
	Fields []request.FieldSpec   `json:"fields"`
}

// GenerationBatchResponse 一次生成的结果
type GenerationBatchResponse struct {
	GenerationID string            `json:"generation_id"`
	SessionID    string            `json:"session_id"`
	Ideas        []entity.IdeaView `json:"ideas"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ToGenerationBatchResponse 将会话结果转换为响应 DTO
func ToGenerationBatchResponse(b *entity.SessionBatch) *GenerationBatchResponse {
	if b == nil {
		return nil
	}
	return &GenerationBatchResponse{
		GenerationID: b.GenerationID,
		SessionID:    b.SessionID,
		Ideas:        b.Ideas.Views(),
		CreatedAt:    b.CreatedAt,
	}
}
