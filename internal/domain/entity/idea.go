// Package entity 定义领域实体
package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// 可行性评分上下限
const (
	MinScore = 0
	MaxScore = 10
)

// BatchSize 一次生成返回的创意数量
const BatchSize = 3

// Idea 一条完整的项目创意
//
// 由生成服务整体创建，之后只读，不做任何修改。字段顺序即 JSON 导出顺序。
type Idea struct {
	Title         string         `json:"title"`
	Tagline       string         `json:"tagline"`
	Problem       string         `json:"problem"`
	Solution      string         `json:"solution"`
	Features      []string       `json:"features"`
	TechStack     []string       `json:"tech_stack"`
	Architecture  string         `json:"architecture"`
	Roadmap       []RoadmapPhase `json:"roadmap"`
	Feasibility   Feasibility    `json:"feasibility"`
	Persona       string         `json:"persona"`
	Monetization  string         `json:"monetization"`
	TaskBreakdown []TaskArea     `json:"task_breakdown"`
}

// RoadmapPhase 路线图阶段
type RoadmapPhase struct {
	Phase string   `json:"phase"`
	Tasks []string `json:"tasks"`
}

// Feasibility 可行性评估
type Feasibility struct {
	Technical int `json:"technical"`
	// TimeDays 生成方给出的独立估算，与请求的 time_available_days 无关
	TimeDays  int `json:"time_days"`
	MarketFit int `json:"market_fit"`
}

// TaskArea 任务拆分中的一个领域
type TaskArea struct {
	Area           string   `json:"area"`
	Tasks          []string `json:"tasks"`
	EstimatedHours float64  `json:"estimated_hours"`
}

// Validate 检查创意是否满足导出前提，返回第一个不满足的字段
func (i *Idea) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"title", i.Title},
		{"tagline", i.Tagline},
		{"problem", i.Problem},
		{"solution", i.Solution},
		{"persona", i.Persona},
		{"monetization", i.Monetization},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &SerializationError{Field: r.field, Reason: "must not be empty"}
		}
	}
	if field := i.invalidUTF8Field(); field != "" {
		return &SerializationError{Field: field, Reason: "must be valid UTF-8"}
	}
	if strings.ContainsAny(i.Tagline, "\r\n") {
		return &SerializationError{Field: "tagline", Reason: "must be a single line"}
	}

	if !scoreInRange(i.Feasibility.Technical) {
		return &SerializationError{Field: "feasibility.technical", Reason: "must be between 0 and 10"}
	}
	if i.Feasibility.TimeDays < 0 {
		return &SerializationError{Field: "feasibility.time_days", Reason: "must not be negative"}
	}
	if !scoreInRange(i.Feasibility.MarketFit) {
		return &SerializationError{Field: "feasibility.market_fit", Reason: "must be between 0 and 10"}
	}

	for idx, area := range i.TaskBreakdown {
		h := area.EstimatedHours
		if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
			return &SerializationError{
				Field:  fmt.Sprintf("task_breakdown[%d].estimated_hours", idx),
				Reason: "must be a finite non-negative number",
			}
		}
	}
	return nil
}

// invalidUTF8Field 返回第一个含非法 UTF-8 字节的字段路径，JSON 编码会把这些字节替换掉
func (i *Idea) invalidUTF8Field() string {
	scalars := []struct {
		field string
		value string
	}{
		{"title", i.Title},
		{"tagline", i.Tagline},
		{"problem", i.Problem},
		{"solution", i.Solution},
		{"architecture", i.Architecture},
		{"persona", i.Persona},
		{"monetization", i.Monetization},
	}
	for _, s := range scalars {
		if !utf8.ValidString(s.value) {
			return s.field
		}
	}
	if idx := invalidUTF8Index(i.Features); idx >= 0 {
		return fmt.Sprintf("features[%d]", idx)
	}
	if idx := invalidUTF8Index(i.TechStack); idx >= 0 {
		return fmt.Sprintf("tech_stack[%d]", idx)
	}
	for p, phase := range i.Roadmap {
		if !utf8.ValidString(phase.Phase) {
			return fmt.Sprintf("roadmap[%d].phase", p)
		}
		if idx := invalidUTF8Index(phase.Tasks); idx >= 0 {
			return fmt.Sprintf("roadmap[%d].tasks[%d]", p, idx)
		}
	}
	for a, area := range i.TaskBreakdown {
		if !utf8.ValidString(area.Area) {
			return fmt.Sprintf("task_breakdown[%d].area", a)
		}
		if idx := invalidUTF8Index(area.Tasks); idx >= 0 {
			return fmt.Sprintf("task_breakdown[%d].tasks[%d]", a, idx)
		}
	}
	return ""
}

func invalidUTF8Index(items []string) int {
	for idx, item := range items {
		if !utf8.ValidString(item) {
			return idx
		}
	}
	return -1
}

func scoreInRange(v int) bool {
	return v >= MinScore && v <= MaxScore
}

// SerializationError 创意不满足不变量时导出失败
type SerializationError struct {
	Field  string
	Reason string
}

func (e *SerializationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot serialize idea: invalid field %q", e.Field)
	}
	return fmt.Sprintf("cannot serialize idea: field %q %s", e.Field, e.Reason)
}

// IdeaBatch 一次生成的固定三条创意
type IdeaBatch [BatchSize]Idea

// NewIdeaBatch 校验数量后构造批次，数量不对时返回 GenerationFailure
func NewIdeaBatch(ideas []Idea) (IdeaBatch, error) {
	var batch IdeaBatch
	if len(ideas) != BatchSize {
		return batch, &GenerationFailure{
			Cause: fmt.Errorf("expected %d ideas, got %d", BatchSize, len(ideas)),
		}
	}
	copy(batch[:], ideas)
	return batch, nil
}

// At 按展示序号（从 1 开始）取创意
func (b *IdeaBatch) At(position int) (Idea, bool) {
	if position < 1 || position > BatchSize {
		return Idea{}, false
	}
	return b[position-1], true
}

// Views 生成带序号的展示视图
func (b *IdeaBatch) Views() []IdeaView {
	views := make([]IdeaView, 0, BatchSize)
	for idx := range b {
		views = append(views, NewIdeaView(idx+1, b[idx]))
	}
	return views
}

// IdeaView 带展示序号的创意，序号只用于展示，不是稳定标识
type IdeaView struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Idea     Idea   `json:"idea"`
}

// NewIdeaView 创建展示视图
func NewIdeaView(position int, idea Idea) IdeaView {
	return IdeaView{
		Position: position,
		Label:    fmt.Sprintf("Idea #%d", position),
		Idea:     idea,
	}
}

// GenerationFailure 生成服务调用失败或返回结果不合法
type GenerationFailure struct {
	Provider string
	Cause    error
}

func (e *GenerationFailure) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("idea generation failed (%s): %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("idea generation failed: %v", e.Cause)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Cause
}

// SessionBatch 会话中保存的一次生成结果
type SessionBatch struct {
	GenerationID string    `json:"generation_id"`
	SessionID    string    `json:"session_id"`
	Ideas        IdeaBatch `json:"ideas"`
	CreatedAt    time.Time `json:"created_at"`
}
