// Package chain 编排基于 eino 的生成链路
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"idea-forge-api/internal/domain/entity"
	llmctx "idea-forge-api/internal/domain/service"
	wfmodel "idea-forge-api/internal/workflow/model"
	wfnode "idea-forge-api/internal/workflow/node"
	workflowport "idea-forge-api/internal/workflow/port"
	workflowprompt "idea-forge-api/internal/workflow/prompt"
	"idea-forge-api/pkg/logger"
)

// WorkflowIdeaBatch 工作流名称，用于打点
const WorkflowIdeaBatch = "idea_batch_generate"

var defaultPromptRegistry = workflowprompt.NewRegistry()

// IdeaBatchOutput 链路输出
type IdeaBatchOutput struct {
	Ideas []entity.Idea
	Model string
}

// IdeaBatchChain 创意批量生成链：模板 -> 模型 -> 解析
type IdeaBatchChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.IdeaBatchInput, *IdeaBatchOutput]
	chainErr  error
}

// NewIdeaBatchChain 创建生成链
func NewIdeaBatchChain(factory workflowport.ChatModelFactory) *IdeaBatchChain {
	return &IdeaBatchChain{factory: factory}
}

// Invoke 执行一次生成
func (c *IdeaBatchChain) Invoke(ctx context.Context, in *wfmodel.IdeaBatchInput) (*IdeaBatchOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type ideaBatchChainState struct {
	In       *wfmodel.IdeaBatchInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *IdeaBatchChain) getChain() (compose.Runnable[*wfmodel.IdeaBatchInput, *IdeaBatchOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *IdeaBatchChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.IdeaBatchInput, *IdeaBatchOutput], error) {
	chain := compose.NewChain[*wfmodel.IdeaBatchInput, *IdeaBatchOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, in *wfmodel.IdeaBatchInput) (*ideaBatchChainState, error) {
			msgs, err := formatIdeaBatchMessages(ctx, in)
			if err != nil {
				return nil, err
			}
			return &ideaBatchChainState{In: in, Messages: msgs}, nil
		}),
		compose.WithNodeName("idea_batch.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *ideaBatchChainState) (*ideaBatchChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}

			provider := strings.TrimSpace(st.In.Provider)
			ctx = llmctx.WithWorkflowProvider(ctx, WorkflowIdeaBatch, provider)
			chatModel, err := c.factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildIdeaBatchModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", provider,
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildIdeaBatchModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("idea_batch.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *ideaBatchChainState) (*IdeaBatchOutput, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			ideas, err := wfnode.ParseIdeas(st.OutMsg.Content)
			if err != nil {
				return nil, err
			}
			out := &IdeaBatchOutput{Ideas: ideas, Model: strings.TrimSpace(st.In.Model)}
			if st.OutMsg.ResponseMeta != nil && st.OutMsg.ResponseMeta.Usage != nil {
				logger.Debug(ctx, "idea batch token usage",
					"prompt_tokens", st.OutMsg.ResponseMeta.Usage.PromptTokens,
					"completion_tokens", st.OutMsg.ResponseMeta.Usage.CompletionTokens,
				)
			}
			return out, nil
		}),
		compose.WithNodeName("idea_batch.parse"),
	)

	return chain.Compile(ctx)
}

func formatIdeaBatchMessages(ctx context.Context, in *wfmodel.IdeaBatchInput) ([]*schema.Message, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if in.Request.IsZero() {
		return nil, fmt.Errorf("generation request is empty")
	}
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptIdeaBatchV1)
	if err != nil {
		return nil, err
	}
	req := in.Request
	return tpl.Format(ctx, workflowprompt.IdeaBatchVars(
		req.Domain(),
		req.Audience(),
		string(req.Difficulty()),
		req.TimeAvailableDays(),
		req.Skills(),
		string(req.Mode()),
		req.Constraints(),
	))
}

func buildIdeaBatchModelOptions(in *wfmodel.IdeaBatchInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "idea_batch",
					"strict": false,
					"schema": wfnode.IdeasJSONSchema(),
				},
			},
		}))
	}

	return opts
}
