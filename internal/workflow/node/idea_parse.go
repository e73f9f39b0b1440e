package node

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"idea-forge-api/internal/domain/entity"
)

// rawIdea 模型输出的宽松结构，评分允许带小数
type rawIdea struct {
	Title         string            `json:"title"`
	Tagline       string            `json:"tagline"`
	Problem       string            `json:"problem"`
	Solution      string            `json:"solution"`
	Features      []string          `json:"features"`
	TechStack     []string          `json:"tech_stack"`
	Architecture  string            `json:"architecture"`
	Roadmap       []rawRoadmapPhase `json:"roadmap"`
	Feasibility   rawFeasibility    `json:"feasibility"`
	Persona       string            `json:"persona"`
	Monetization  string            `json:"monetization"`
	TaskBreakdown []entity.TaskArea `json:"task_breakdown"`
}

type rawRoadmapPhase struct {
	Phase string   `json:"phase"`
	Tasks []string `json:"tasks"`
}

type rawFeasibility struct {
	Technical float64 `json:"technical"`
	TimeDays  float64 `json:"time_days"`
	MarketFit float64 `json:"market_fit"`
}

// ParseIdeas 解析模型输出为创意列表
//
// 兼容 {"ideas": [...]} 与顶层数组两种形式。不校验数量。
func ParseIdeas(content string) ([]entity.Idea, error) {
	raw := ExtractJSONObject(content)
	if raw == "" {
		return nil, fmt.Errorf("empty llm response")
	}

	var items []rawIdea
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("failed to parse ideas array: %w", err)
		}
	} else {
		var wrapper struct {
			Ideas []rawIdea `json:"ideas"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse ideas object: %w", err)
		}
		items = wrapper.Ideas
	}

	ideas := make([]entity.Idea, 0, len(items))
	for i := range items {
		ideas = append(ideas, items[i].normalize())
	}
	return ideas, nil
}

func (r *rawIdea) normalize() entity.Idea {
	roadmap := make([]entity.RoadmapPhase, 0, len(r.Roadmap))
	for _, p := range r.Roadmap {
		roadmap = append(roadmap, entity.RoadmapPhase{
			Phase: strings.TrimSpace(p.Phase),
			Tasks: nonNil(p.Tasks),
		})
	}
	breakdown := make([]entity.TaskArea, 0, len(r.TaskBreakdown))
	for _, a := range r.TaskBreakdown {
		breakdown = append(breakdown, entity.TaskArea{
			Area:           strings.TrimSpace(a.Area),
			Tasks:          nonNil(a.Tasks),
			EstimatedHours: a.EstimatedHours,
		})
	}

	return entity.Idea{
		Title:        strings.TrimSpace(r.Title),
		Tagline:      SingleLine(r.Tagline),
		Problem:      strings.TrimSpace(r.Problem),
		Solution:     strings.TrimSpace(r.Solution),
		Features:     nonNil(r.Features),
		TechStack:    nonNil(r.TechStack),
		Architecture: strings.Trim(r.Architecture, "\n"),
		Roadmap:      roadmap,
		Feasibility: entity.Feasibility{
			Technical: clampScore(r.Feasibility.Technical),
			TimeDays:  clampInt(r.Feasibility.TimeDays, 0, math.MaxInt32),
			MarketFit: clampScore(r.Feasibility.MarketFit),
		},
		Persona:       strings.TrimSpace(r.Persona),
		Monetization:  strings.TrimSpace(r.Monetization),
		TaskBreakdown: breakdown,
	}
}

// SingleLine 将多行文本压成一行
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clampScore(v float64) int {
	return clampInt(v, entity.MinScore, entity.MaxScore)
}

// clampInt 在浮点域内先截断再取整，超出 int 范围的值转换结果不确定
func clampInt(v float64, lo, hi int) int {
	if math.IsNaN(v) {
		return lo
	}
	v = math.Round(v)
	if v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// IdeasJSONSchema 结构化输出使用的 JSON Schema
func IdeasJSONSchema() map[string]any {
	strArray := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	idea := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required": []any{"title", "tagline", "problem", "solution", "features", "tech_stack",
			"architecture", "roadmap", "feasibility", "persona", "monetization", "task_breakdown"},
		"properties": map[string]any{
			"title":        map[string]any{"type": "string"},
			"tagline":      map[string]any{"type": "string"},
			"problem":      map[string]any{"type": "string"},
			"solution":     map[string]any{"type": "string"},
			"features":     strArray,
			"tech_stack":   strArray,
			"architecture": map[string]any{"type": "string"},
			"roadmap": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"phase", "tasks"},
					"properties": map[string]any{
						"phase": map[string]any{"type": "string"},
						"tasks": strArray,
					},
				},
			},
			"feasibility": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"technical", "time_days", "market_fit"},
				"properties": map[string]any{
					"technical":  map[string]any{"type": "integer", "minimum": 0, "maximum": 10},
					"time_days":  map[string]any{"type": "integer", "minimum": 0},
					"market_fit": map[string]any{"type": "integer", "minimum": 0, "maximum": 10},
				},
			},
			"persona":      map[string]any{"type": "string"},
			"monetization": map[string]any{"type": "string"},
			"task_breakdown": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"area", "tasks", "estimated_hours"},
					"properties": map[string]any{
						"area":            map[string]any{"type": "string"},
						"tasks":           strArray,
						"estimated_hours": map[string]any{"type": "number", "minimum": 0},
					},
				},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"ideas"},
		"properties": map[string]any{
			"ideas": map[string]any{
				"type":     "array",
				"minItems": entity.BatchSize,
				"maxItems": entity.BatchSize,
				"items":    idea,
			},
		},
	}
}
