package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"idea-forge-api/internal/config"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/service"
	wfnode "idea-forge-api/internal/workflow/node"
	workflowprompt "idea-forge-api/internal/workflow/prompt"
	"idea-forge-api/pkg/metrics"
)

// ErrEmptyResponse 模型没有返回任何文本
var ErrEmptyResponse = errors.New("llm: empty response from model")

// contentGenerator genai.Models 的最小接口
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator 通过 Google GenAI SDK 调用 Gemini 生成创意
type GeminiGenerator struct {
	name     string
	provider config.ProviderConfig
	gen      config.GenerationConfig
	prompts  *workflowprompt.Registry

	once    sync.Once
	models  contentGenerator
	initErr error
}

var _ service.IdeaGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator 创建 Gemini 生成器，客户端在首次调用时创建
func NewGeminiGenerator(name string, providerCfg config.ProviderConfig, gen config.GenerationConfig) *GeminiGenerator {
	return &GeminiGenerator{
		name:     name,
		provider: providerCfg,
		gen:      gen,
		prompts:  workflowprompt.NewRegistry(),
	}
}

func (g *GeminiGenerator) client(ctx context.Context) (contentGenerator, error) {
	g.once.Do(func() {
		if g.models != nil {
			return
		}
		cli, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.provider.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			g.initErr = fmt.Errorf("failed to create genai client: %w", err)
			return
		}
		g.models = cli.Models
	})
	return g.models, g.initErr
}

func (g *GeminiGenerator) modelName() string {
	if g.gen.Model != "" {
		return g.gen.Model
	}
	return g.provider.Model
}

// Generate 实现 service.IdeaGenerator
func (g *GeminiGenerator) Generate(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
	modelName := g.modelName()
	ctx, span := otel.Tracer("llm").Start(ctx, "llm.gemini.Generate")
	span.SetAttributes(
		attribute.String("llm.provider", g.name),
		attribute.String("llm.model", modelName),
	)
	defer span.End()

	start := time.Now()
	out, err := g.generate(ctx, req, modelName)
	metrics.LLMCallDuration.WithLabelValues(g.name, modelName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(g.name, modelName, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.LLMCallTotal.WithLabelValues(g.name, modelName, "success").Inc()
	return out, nil
}

func (g *GeminiGenerator) generate(ctx context.Context, req entity.GenerationRequest, modelName string) (*service.GenerationOutput, error) {
	models, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	system, user, err := g.prompts.Texts(workflowprompt.PromptIdeaBatchV1)
	if err != nil {
		return nil, err
	}
	userText := workflowprompt.Render(user, workflowprompt.IdeaBatchVars(
		req.Domain(),
		req.Audience(),
		string(req.Difficulty()),
		req.TimeAvailableDays(),
		req.Skills(),
		string(req.Mode()),
		req.Constraints(),
	))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		ResponseMIMEType:  "application/json",
	}
	if g.gen.Temperature > 0 {
		cfg.Temperature = ptr(float32(g.gen.Temperature))
	}
	if g.gen.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.gen.MaxTokens)
	}

	resp, err := models.GenerateContent(ctx, modelName,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: userText}}}},
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}

	if resp.UsageMetadata != nil {
		metrics.LLMTokensUsed.WithLabelValues(g.name, modelName, "prompt").Add(float64(resp.UsageMetadata.PromptTokenCount))
		metrics.LLMTokensUsed.WithLabelValues(g.name, modelName, "completion").Add(float64(resp.UsageMetadata.CandidatesTokenCount))
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", g.name, ErrEmptyResponse)
	}

	ideas, err := wfnode.ParseIdeas(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	return &service.GenerationOutput{Ideas: ideas, Provider: g.name, Model: modelName}, nil
}

// responseText 拼接首个候选的全部文本片段
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
