package export

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"idea-forge-api/internal/domain/entity"
)

// HTML 将文本导出渲染为 HTML 片段，用于预览
//
// 架构说明放入代码块以保留换行。
func HTML(idea entity.Idea) (string, error) {
	if err := idea.Validate(); err != nil {
		return "", err
	}

	md := []byte(render(&idea, true))

	// parser 与 renderer 都带状态，每次渲染重新创建
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})

	return string(markdown.ToHTML(md, p, r)), nil
}
