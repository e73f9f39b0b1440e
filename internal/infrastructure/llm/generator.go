package llm

import (
	"context"
	"fmt"
	"strings"

	"idea-forge-api/internal/config"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/service"
	"idea-forge-api/internal/workflow/chain"
	wfmodel "idea-forge-api/internal/workflow/model"
)

// 提供商适配器类型
const (
	KindOpenAI = "openai"
	KindGemini = "gemini"
)

func providerKind(cfg config.ProviderConfig) string {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		return KindOpenAI
	}
	return kind
}

// EinoGenerator 通过 eino 链路调用 OpenAI 兼容接口生成创意
type EinoGenerator struct {
	chain    *chain.IdeaBatchChain
	provider string
	model    string
	gen      config.GenerationConfig
}

var _ service.IdeaGenerator = (*EinoGenerator)(nil)

// NewEinoGenerator 创建 eino 生成器
func NewEinoGenerator(c *chain.IdeaBatchChain, provider string, providerCfg config.ProviderConfig, gen config.GenerationConfig) *EinoGenerator {
	modelName := providerCfg.Model
	if gen.Model != "" {
		modelName = gen.Model
	}
	return &EinoGenerator{chain: c, provider: provider, model: modelName, gen: gen}
}

// Generate 实现 service.IdeaGenerator
func (g *EinoGenerator) Generate(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
	in := &wfmodel.IdeaBatchInput{
		Request:  req,
		Provider: g.provider,
		Model:    g.model,
	}
	if g.gen.Temperature > 0 {
		in.Temperature = ptr(float32(g.gen.Temperature))
	}
	if g.gen.MaxTokens > 0 {
		in.MaxTokens = ptr(g.gen.MaxTokens)
	}

	out, err := g.chain.Invoke(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.provider, err)
	}
	return &service.GenerationOutput{Ideas: out.Ideas, Provider: g.provider, Model: g.model}, nil
}

// NewGenerator 根据配置组装生成器：首选提供商加 fallback_chain 中的备选
func NewGenerator(cfg *config.Config) (service.IdeaGenerator, error) {
	primary := cfg.Generation.Provider
	if primary == "" {
		primary = cfg.LLM.DefaultProvider
	}
	names := dedupe(append([]string{primary}, cfg.LLM.FallbackChain...))
	if len(names) == 0 {
		return nil, fmt.Errorf("no llm provider configured")
	}

	einoChain := chain.NewIdeaBatchChain(NewEinoFactory(&cfg.LLM))

	candidates := make([]Candidate, 0, len(names))
	for _, name := range names {
		providerCfg, ok := cfg.LLM.Providers[name]
		if !ok {
			return nil, fmt.Errorf("provider %s not found in LLM config", name)
		}
		var gen service.IdeaGenerator
		switch kind := providerKind(providerCfg); kind {
		case KindOpenAI:
			gen = NewEinoGenerator(einoChain, name, providerCfg, cfg.Generation)
		case KindGemini:
			gen = NewGeminiGenerator(name, providerCfg, cfg.Generation)
		default:
			return nil, fmt.Errorf("provider %s has unsupported kind %q", name, kind)
		}
		candidates = append(candidates, Candidate{Name: name, Generator: gen})
	}

	if len(candidates) == 1 {
		return candidates[0].Generator, nil
	}
	return NewFallbackGenerator(candidates...), nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
