// Package prompt 管理内嵌的提示词模板
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// PromptID 提示词标识
type PromptID string

const (
	PromptIdeaBatchV1 PromptID = "idea_batch_v1"
)

// Registry 提示词模板注册表，模板首次使用时加载并缓存
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

// ChatTemplate 获取 eino 聊天模板
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	system, user, err := r.texts(id)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

// Texts 返回原始的 system 与 user 模板文本，供不走 eino 的适配器使用
func (r *Registry) Texts(id PromptID) (system string, user string, err error) {
	return r.texts(id)
}

func (r *Registry) texts(id PromptID) (string, string, error) {
	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return "", "", err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return "", "", err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptIdeaBatchV1:
		return "templates/idea_batch_v1.system.txt", "templates/idea_batch_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// IdeaBatchVars 创意生成模板的变量
func IdeaBatchVars(domain, audience, difficulty string, days int, skills, mode, constraints string) map[string]any {
	return map[string]any{
		"domain":              domain,
		"audience":            audience,
		"difficulty":          difficulty,
		"time_available_days": days,
		"skills":              orNone(skills),
		"mode":                mode,
		"constraints":         orNone(constraints),
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none specified"
	}
	return s
}

// Render 用变量替换 {name} 占位符，用于不走 eino 模板的适配器
func Render(text string, vars map[string]any) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
