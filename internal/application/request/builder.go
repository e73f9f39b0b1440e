// Package request 将表单输入校验并规范化为生成请求
package request

import (
	"fmt"
	"strconv"
	"strings"

	"idea-forge-api/internal/domain/entity"
)

// 表单字段名
const (
	FieldDomain            = "domain"
	FieldAudience          = "audience"
	FieldDifficulty        = "difficulty"
	FieldTimeAvailableDays = "time_available_days"
	FieldSkills            = "skills"
	FieldMode              = "mode"
	FieldConstraints       = "constraints"
)

// FieldNames 按表单顺序列出全部字段
var FieldNames = []string{
	FieldDomain,
	FieldAudience,
	FieldDifficulty,
	FieldTimeAvailableDays,
	FieldSkills,
	FieldMode,
	FieldConstraints,
}

// DefaultTimeAvailableDays 表单中天数的默认文本
const DefaultTimeAvailableDays = "2"

// ValidationError 某个表单字段不合法
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid field %q", e.Field)
	}
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// RequestDraft 可变的表单草稿，所有字段保持用户输入的原始文本
type RequestDraft struct {
	Domain            string `json:"domain"`
	Audience          string `json:"audience"`
	Difficulty        string `json:"difficulty"`
	TimeAvailableDays string `json:"time_available_days"`
	Skills            string `json:"skills"`
	Mode              string `json:"mode"`
	Constraints       string `json:"constraints"`
}

// NewRequestDraft 创建带默认值的草稿
func NewRequestDraft() *RequestDraft {
	return &RequestDraft{
		Difficulty:        string(entity.DifficultyBeginner),
		TimeAvailableDays: DefaultTimeAvailableDays,
		Mode:              string(entity.ModeHackathon),
	}
}

// Set 按表单字段名更新单个字段
func (d *RequestDraft) Set(field, value string) error {
	ptr := d.fieldPtr(field)
	if ptr == nil {
		return &ValidationError{Field: field, Reason: "unknown field"}
	}
	*ptr = value
	return nil
}

// Get 按表单字段名读取原始文本
func (d *RequestDraft) Get(field string) (string, bool) {
	ptr := d.fieldPtr(field)
	if ptr == nil {
		return "", false
	}
	return *ptr, true
}

func (d *RequestDraft) fieldPtr(field string) *string {
	switch field {
	case FieldDomain:
		return &d.Domain
	case FieldAudience:
		return &d.Audience
	case FieldDifficulty:
		return &d.Difficulty
	case FieldTimeAvailableDays:
		return &d.TimeAvailableDays
	case FieldSkills:
		return &d.Skills
	case FieldMode:
		return &d.Mode
	case FieldConstraints:
		return &d.Constraints
	}
	return nil
}

// Build 校验草稿并生成不可变请求，失败时返回 *ValidationError
//
// 字段按表单顺序校验，只报告第一个不合法的字段。
func (d *RequestDraft) Build() (entity.GenerationRequest, error) {
	domain := strings.TrimSpace(d.Domain)
	if domain == "" {
		return entity.GenerationRequest{}, &ValidationError{Field: FieldDomain, Reason: "is required"}
	}

	audience := strings.TrimSpace(d.Audience)
	if audience == "" {
		return entity.GenerationRequest{}, &ValidationError{Field: FieldAudience, Reason: "is required"}
	}

	difficulty := entity.DifficultyBeginner
	if v := strings.TrimSpace(d.Difficulty); v != "" {
		difficulty = entity.Difficulty(v)
		if !difficulty.Valid() {
			return entity.GenerationRequest{}, &ValidationError{
				Field:  FieldDifficulty,
				Reason: fmt.Sprintf("unsupported value %q", v),
			}
		}
	}

	days, err := ParseTimeAvailableDays(d.TimeAvailableDays)
	if err != nil {
		return entity.GenerationRequest{}, err
	}

	mode := entity.ModeHackathon
	if v := strings.TrimSpace(d.Mode); v != "" {
		mode = entity.Mode(v)
		if !mode.Valid() {
			return entity.GenerationRequest{}, &ValidationError{
				Field:  FieldMode,
				Reason: fmt.Sprintf("unsupported value %q", v),
			}
		}
	}

	return entity.NewGenerationRequest(entity.GenerationRequestParams{
		Domain:            domain,
		Audience:          audience,
		Difficulty:        difficulty,
		TimeAvailableDays: days,
		Skills:            strings.TrimSpace(d.Skills),
		Mode:              mode,
		Constraints:       strings.TrimSpace(d.Constraints),
	}), nil
}

// ParseTimeAvailableDays 将天数文本解析为 [1, 365] 内的整数
func ParseTimeAvailableDays(raw string) (int, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, &ValidationError{Field: FieldTimeAvailableDays, Reason: "is required"}
	}
	days, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ValidationError{Field: FieldTimeAvailableDays, Reason: "must be an integer"}
	}
	if days < entity.MinTimeAvailableDays || days > entity.MaxTimeAvailableDays {
		return 0, &ValidationError{
			Field: FieldTimeAvailableDays,
			Reason: fmt.Sprintf("must be between %d and %d",
				entity.MinTimeAvailableDays, entity.MaxTimeAvailableDays),
		}
	}
	return days, nil
}
