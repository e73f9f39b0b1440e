package export

import (
	"errors"
	"fmt"
	"strings"

	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/pkg/metrics"
)

// ErrUnsupportedFormat 未知的导出格式
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format 导出格式
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatFilename Format = "filename"
)

// ParseFormat 解析导出格式，空字符串视为 text
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatHTML, FormatFilename:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
	}
}

// Document 导出结果
type Document struct {
	Format      Format
	Body        string
	ContentType string
	// Filename 仅 JSON 导出时设置，用作下载文件名
	Filename string
}

// Render 按格式导出单条创意
func Render(idea entity.Idea, format Format) (*Document, error) {
	doc, err := renderDocument(idea, format)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IdeaExportTotal.WithLabelValues(string(format), status).Inc()
	return doc, err
}

func renderDocument(idea entity.Idea, format Format) (*Document, error) {
	switch format {
	case FormatText:
		body, err := ReadableText(idea)
		if err != nil {
			return nil, err
		}
		return &Document{Format: format, Body: body, ContentType: "text/plain; charset=utf-8"}, nil
	case FormatJSON:
		body, err := CanonicalJSON(idea)
		if err != nil {
			return nil, err
		}
		return &Document{
			Format:      format,
			Body:        body,
			ContentType: "application/json",
			Filename:    SuggestedFilename(idea),
		}, nil
	case FormatHTML:
		body, err := HTML(idea)
		if err != nil {
			return nil, err
		}
		return &Document{Format: format, Body: body, ContentType: "text/html; charset=utf-8"}, nil
	case FormatFilename:
		return &Document{Format: format, Body: SuggestedFilename(idea), ContentType: "text/plain; charset=utf-8"}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}
