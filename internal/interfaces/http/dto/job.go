// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"idea-forge-api/internal/domain/entity"
)

// JobResponse 生成任务响应
type JobResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Status      string          `json:"status"`
	Mode        string          `json:"mode"`
	Difficulty  string          `json:"difficulty"`
	Input       json.RawMessage `json:"input,omitempty"`
	ErrorMsg    string          `json:"error_msg,omitempty"`
	Provider    string          `json:"provider,omitempty"`
	Model       string          `json:"model,omitempty"`
	DurationMs  int             `json:"duration_ms,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// JobListResponse 任务列表响应
type JobListResponse struct {
	Jobs []*JobResponse `json:"jobs"`
}

// ToJobResponse 将领域实体转换为响应 DTO
func ToJobResponse(j *entity.GenerationJob) *JobResponse {
	if j == nil {
		return nil
	}

	return &JobResponse{
		ID:          j.ID,
		SessionID:   j.SessionID,
		Status:      string(j.Status),
		Mode:        string(j.Mode),
		Difficulty:  string(j.Difficulty),
		Input:       j.InputParams,
		ErrorMsg:    j.ErrorMessage,
		Provider:    j.LLMProvider,
		Model:       j.LLMModel,
		DurationMs:  j.DurationMs,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ToJobListResponse 将领域实体列表转换为响应 DTO
func ToJobListResponse(jobs []*entity.GenerationJob) *JobListResponse {
	resp := &JobListResponse{
		Jobs: make([]*JobResponse, 0, len(jobs)),
	}

	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, ToJobResponse(j))
	}
	return resp
}
