package request

import (
	"idea-forge-api/internal/domain/entity"
)

// FieldKind 表单控件类型
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindNumber   FieldKind = "number"
	FieldKindSelect   FieldKind = "select"
	FieldKindTextarea FieldKind = "textarea"
)

// Option 下拉选项
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldSpec 单个表单字段的描述
type FieldSpec struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Default     string    `json:"default"`
	Min         int       `json:"min,omitempty"`
	Max         int       `json:"max,omitempty"`
	Options     []Option  `json:"options,omitempty"`
}

// DifficultyOptions 难度下拉选项
func DifficultyOptions() []Option {
	opts := make([]Option, 0, len(entity.Difficulties))
	for _, d := range entity.Difficulties {
		opts = append(opts, Option{Value: string(d), Label: d.Label()})
	}
	return opts
}

// ModeOptions 模式下拉选项
func ModeOptions() []Option {
	opts := make([]Option, 0, len(entity.Modes))
	for _, m := range entity.Modes {
		opts = append(opts, Option{Value: string(m), Label: m.Label()})
	}
	return opts
}

// FormFields 按表单顺序返回字段描述，默认值取自 NewRequestDraft
func FormFields() []FieldSpec {
	draft := NewRequestDraft()
	return []FieldSpec{
		{
			Name:        FieldDomain,
			Label:       "Domain / Industry",
			Kind:        FieldKindText,
			Placeholder: "e.g., education, healthcare, fintech",
			Required:    true,
			Default:     draft.Domain,
		},
		{
			Name:        FieldAudience,
			Label:       "Target Audience",
			Kind:        FieldKindText,
			Placeholder: "e.g., college students, small businesses",
			Required:    true,
			Default:     draft.Audience,
		},
		{
			Name:     FieldDifficulty,
			Label:    "Difficulty Level",
			Kind:     FieldKindSelect,
			Required: true,
			Default:  draft.Difficulty,
			Options:  DifficultyOptions(),
		},
		{
			Name:     FieldTimeAvailableDays,
			Label:    "Time Available (days)",
			Kind:     FieldKindNumber,
			Required: true,
			Default:  draft.TimeAvailableDays,
			Min:      entity.MinTimeAvailableDays,
			Max:      entity.MaxTimeAvailableDays,
		},
		{
			Name:     FieldMode,
			Label:    "Project Mode",
			Kind:     FieldKindSelect,
			Required: true,
			Default:  draft.Mode,
			Options:  ModeOptions(),
		},
		{
			Name:        FieldSkills,
			Label:       "Your Skills",
			Kind:        FieldKindText,
			Placeholder: "e.g., React, Python, ML",
			Default:     draft.Skills,
		},
		{
			Name:        FieldConstraints,
			Label:       "Constraints / Requirements",
			Kind:        FieldKindTextarea,
			Placeholder: "Any specific requirements or constraints? (e.g., no hardware, must use AI, mobile-first)",
			Default:     draft.Constraints,
		},
	}
}
