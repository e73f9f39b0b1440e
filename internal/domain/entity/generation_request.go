// Package entity 定义领域实体
package entity

import (
	"encoding/json"
)

// Difficulty 难度级别
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties 按展示顺序列出全部难度
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Valid 是否为合法难度
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// Label 展示名称
func (d Difficulty) Label() string {
	switch d {
	case DifficultyBeginner:
		return "Beginner"
	case DifficultyIntermediate:
		return "Intermediate"
	case DifficultyAdvanced:
		return "Advanced"
	}
	return string(d)
}

// Mode 项目模式
type Mode string

const (
	ModeHackathon Mode = "Hackathon"
	ModeStartup   Mode = "Startup"
	ModeAcademic  Mode = "Academic"
	ModeBeginner  Mode = "Beginner"
)

// Modes 按展示顺序列出全部模式
var Modes = []Mode{ModeHackathon, ModeStartup, ModeAcademic, ModeBeginner}

// Valid 是否为合法模式
func (m Mode) Valid() bool {
	for _, v := range Modes {
		if m == v {
			return true
		}
	}
	return false
}

// Label 展示名称
func (m Mode) Label() string {
	if m == ModeBeginner {
		return "Beginner Project"
	}
	return string(m)
}

// 请求字段的取值范围
const (
	MinTimeAvailableDays = 1
	MaxTimeAvailableDays = 365
)

// GenerationRequest 已校验的生成请求
//
// 只能通过 request.RequestDraft.Build 构造，构造后不可修改。
type GenerationRequest struct {
	domain            string
	audience          string
	difficulty        Difficulty
	timeAvailableDays int
	skills            string
	mode              Mode
	constraints       string
}

// GenerationRequestParams 构造请求所需的已规范化字段
type GenerationRequestParams struct {
	Domain            string
	Audience          string
	Difficulty        Difficulty
	TimeAvailableDays int
	Skills            string
	Mode              Mode
	Constraints       string
}

// NewGenerationRequest 由已校验的字段创建请求，调用方负责校验
func NewGenerationRequest(p GenerationRequestParams) GenerationRequest {
	return GenerationRequest{
		domain:            p.Domain,
		audience:          p.Audience,
		difficulty:        p.Difficulty,
		timeAvailableDays: p.TimeAvailableDays,
		skills:            p.Skills,
		mode:              p.Mode,
		constraints:       p.Constraints,
	}
}

func (r GenerationRequest) Domain() string         { return r.domain }
func (r GenerationRequest) Audience() string       { return r.audience }
func (r GenerationRequest) Difficulty() Difficulty { return r.difficulty }
func (r GenerationRequest) TimeAvailableDays() int { return r.timeAvailableDays }
func (r GenerationRequest) Skills() string         { return r.skills }
func (r GenerationRequest) Mode() Mode             { return r.mode }
func (r GenerationRequest) Constraints() string    { return r.constraints }

// IsZero 是否为未构造的零值
func (r GenerationRequest) IsZero() bool {
	return r.domain == "" && r.audience == "" && r.timeAvailableDays == 0
}

// generationRequestJSON 序列化视图
type generationRequestJSON struct {
	Domain            string     `json:"domain"`
	Audience          string     `json:"audience"`
	Difficulty        Difficulty `json:"difficulty"`
	TimeAvailableDays int        `json:"time_available_days"`
	Skills            string     `json:"skills"`
	Mode              Mode       `json:"mode"`
	Constraints       string     `json:"constraints"`
}

// MarshalJSON 实现 json.Marshaler
func (r GenerationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(generationRequestJSON{
		Domain:            r.domain,
		Audience:          r.audience,
		Difficulty:        r.difficulty,
		TimeAvailableDays: r.timeAvailableDays,
		Skills:            r.skills,
		Mode:              r.mode,
		Constraints:       r.constraints,
	})
}
