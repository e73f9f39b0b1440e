// Package export 提供创意的文本、JSON 与 HTML 导出
//
// 所有函数都是纯函数，不做任何 I/O。
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"idea-forge-api/internal/domain/entity"
)

// FilenameExtension JSON 导出文件扩展名
const FilenameExtension = ".json"

// FallbackFilenameBase 标题中没有任何字母数字时使用的文件名
const FallbackFilenameBase = "project_idea"

// ReadableText 生成便于复制粘贴的文本
func ReadableText(idea entity.Idea) (string, error) {
	if err := idea.Validate(); err != nil {
		return "", err
	}
	return render(&idea, false), nil
}

// render 按固定章节顺序输出，fenceArchitecture 时架构部分包在代码块中
func render(idea *entity.Idea, fenceArchitecture bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n%s\n\n", idea.Title, idea.Tagline)
	fmt.Fprintf(&b, "## Problem\n%s\n\n", idea.Problem)
	fmt.Fprintf(&b, "## Solution\n%s\n\n", idea.Solution)
	fmt.Fprintf(&b, "## Features\n%s\n\n", bullets(idea.Features))
	fmt.Fprintf(&b, "## Tech Stack\n%s\n\n", strings.Join(idea.TechStack, ", "))

	if fenceArchitecture {
		fmt.Fprintf(&b, "## Architecture\n```\n%s\n```\n\n", idea.Architecture)
	} else {
		fmt.Fprintf(&b, "## Architecture\n%s\n\n", idea.Architecture)
	}

	phases := make([]string, 0, len(idea.Roadmap))
	for _, p := range idea.Roadmap {
		phases = append(phases, fmt.Sprintf("### %s\n%s", p.Phase, bullets(p.Tasks)))
	}
	fmt.Fprintf(&b, "## Roadmap\n%s\n\n", strings.Join(phases, "\n\n"))

	f := idea.Feasibility
	fmt.Fprintf(&b, "## Feasibility\n- Technical Difficulty: %d/10\n- Estimated Time: %d days\n- Market Fit Score: %d/10\n\n",
		f.Technical, f.TimeDays, f.MarketFit)

	fmt.Fprintf(&b, "## Target Persona\n%s\n\n", idea.Persona)
	fmt.Fprintf(&b, "## Monetization\n%s\n\n", idea.Monetization)

	areas := make([]string, 0, len(idea.TaskBreakdown))
	for _, a := range idea.TaskBreakdown {
		areas = append(areas, fmt.Sprintf("### %s (%sh)\n%s",
			strings.ToUpper(a.Area), FormatHours(a.EstimatedHours), bullets(a.Tasks)))
	}
	fmt.Fprintf(&b, "## Task Breakdown\n%s", strings.Join(areas, "\n\n"))

	return strings.TrimSpace(b.String())
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// FormatHours 以最短十进制形式输出工时，如 12、2.5
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// CanonicalJSON 生成两空格缩进、字段顺序固定的 JSON，可无损解码
//
// 空列表一律输出为 []，不会出现 null。
func CanonicalJSON(idea entity.Idea) (string, error) {
	if err := idea.Validate(); err != nil {
		return "", err
	}
	idea = withEmptyLists(idea)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idea); err != nil {
		return "", &entity.SerializationError{Field: "idea", Reason: err.Error()}
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeCanonicalJSON 解析 CanonicalJSON 的输出，拒绝未知字段和多余内容
func DecodeCanonicalJSON(data string) (entity.Idea, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()

	var idea entity.Idea
	if err := dec.Decode(&idea); err != nil {
		return entity.Idea{}, fmt.Errorf("decode idea json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return entity.Idea{}, errors.New("decode idea json: unexpected trailing data")
	}
	if err := idea.Validate(); err != nil {
		return entity.Idea{}, err
	}
	return withEmptyLists(idea), nil
}

// withEmptyLists 返回把 nil 列表替换为空列表的副本，不修改入参共享的底层数组
func withEmptyLists(idea entity.Idea) entity.Idea {
	idea.Features = emptyIfNil(idea.Features)
	idea.TechStack = emptyIfNil(idea.TechStack)

	roadmap := make([]entity.RoadmapPhase, len(idea.Roadmap))
	for i, p := range idea.Roadmap {
		roadmap[i] = entity.RoadmapPhase{Phase: p.Phase, Tasks: emptyIfNil(p.Tasks)}
	}
	idea.Roadmap = roadmap

	breakdown := make([]entity.TaskArea, len(idea.TaskBreakdown))
	for i, a := range idea.TaskBreakdown {
		a.Tasks = emptyIfNil(a.Tasks)
		breakdown[i] = a
	}
	idea.TaskBreakdown = breakdown
	return idea
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// SuggestedFilename 由标题生成安全的文件名
//
// ASCII 字母转小写，其余不在 [a-z0-9] 内的字符（含非 ASCII 字符）都替换为下划线。
func SuggestedFilename(idea entity.Idea) string {
	var b strings.Builder
	meaningful := false
	for _, r := range idea.Title {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			meaningful = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			meaningful = true
		default:
			b.WriteByte('_')
		}
	}
	if !meaningful {
		return FallbackFilenameBase + FilenameExtension
	}
	return b.String() + FilenameExtension
}
