// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// GenerationJob 一次创意生成的审计记录
type GenerationJob struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid"`
	SessionID    string          `json:"session_id" gorm:"index;not null"`
	Status       JobStatus       `json:"status" gorm:"index;not null"`
	Mode         Mode            `json:"mode"`
	Difficulty   Difficulty      `json:"difficulty"`
	InputParams  json.RawMessage `json:"input_params" gorm:"type:jsonb"`
	OutputResult json.RawMessage `json:"output_result,omitempty" gorm:"type:jsonb"`
	ErrorMessage string          `json:"error_message,omitempty"`
	LLMProvider  string          `json:"llm_provider,omitempty"`
	LLMModel     string          `json:"llm_model,omitempty"`
	DurationMs   int             `json:"duration_ms,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (GenerationJob) TableName() string {
	return "idea_generation_jobs"
}

// NewGenerationJob 创建新任务
func NewGenerationJob(id, sessionID string, req GenerationRequest) (*GenerationJob, error) {
	params, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return &GenerationJob{
		ID:          id,
		SessionID:   sessionID,
		Status:      JobStatusPending,
		Mode:        req.Mode(),
		Difficulty:  req.Difficulty(),
		InputParams: params,
		CreatedAt:   time.Now(),
	}, nil
}

// Start 开始执行任务
func (j *GenerationJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// Complete 完成任务
func (j *GenerationJob) Complete(result json.RawMessage) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.OutputResult = result
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Fail 任务失败
func (j *GenerationJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// SetProvider 记录实际使用的模型
func (j *GenerationJob) SetProvider(provider, model string) {
	j.LLMProvider = provider
	j.LLMModel = model
}

// IsTerminal 是否已结束
func (j *GenerationJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
