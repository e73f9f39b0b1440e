package callback

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"idea-forge-api/internal/domain/service"
	"idea-forge-api/pkg/metrics"
)

func TestChatModelCallbackMetrics(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := service.WithWorkflowProvider(context.Background(), "idea_batch_generate", "cb-test")

	success := metrics.LLMCallTotal.WithLabelValues("cb-test", "m1", "success")
	failure := metrics.LLMCallTotal.WithLabelValues("cb-test", "m1", "error")
	prompt := metrics.LLMTokensUsed.WithLabelValues("cb-test", "m1", "prompt")
	beforeOK, beforeErr, beforePrompt := testutil.ToFloat64(success), testutil.ToFloat64(failure), testutil.ToFloat64(prompt)

	runCtx := h.OnStart(ctx, nil, &model.CallbackInput{Config: &model.Config{Model: "m1"}})
	h.OnEnd(runCtx, nil, &model.CallbackOutput{
		Config:     &model.Config{Model: "m1"},
		TokenUsage: &model.TokenUsage{PromptTokens: 12, CompletionTokens: 30},
		Message:    schema.AssistantMessage("{}", nil),
	})

	runCtx = h.OnStart(ctx, nil, &model.CallbackInput{Config: &model.Config{Model: "m1"}})
	h.OnError(runCtx, nil, errors.New("timeout"))

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
	assert.Equal(t, beforePrompt+12, testutil.ToFloat64(prompt))
}
