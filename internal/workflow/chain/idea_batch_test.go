package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-forge-api/internal/domain/entity"
	wfmodel "idea-forge-api/internal/workflow/model"
)

type fakeChatModel struct {
	mu        sync.Mutex
	calls     int
	firstErr  error
	content   string
	lastInput []*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastInput = input
	if m.calls == 1 && m.firstErr != nil {
		return nil, m.firstErr
	}
	return schema.AssistantMessage(m.content, nil), nil
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeFactory struct {
	model *fakeChatModel
	asked []string
}

func (f *fakeFactory) Get(_ context.Context, name string) (model.BaseChatModel, error) {
	f.asked = append(f.asked, name)
	if name == "missing" {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return f.model, nil
}

func ideasJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"title":"Idea %d","tagline":"t","problem":"p","solution":"s","features":[],"tech_stack":[],"architecture":"","roadmap":[],"feasibility":{"technical":3,"time_days":2,"market_fit":5},"persona":"x","monetization":"y","task_breakdown":[]}`, i+1)
	}
	return `{"ideas":[` + strings.Join(parts, ",") + `]}`
}

func testInput(provider string) *wfmodel.IdeaBatchInput {
	return &wfmodel.IdeaBatchInput{
		Request: entity.NewGenerationRequest(entity.GenerationRequestParams{
			Domain:            "education",
			Audience:          "teachers",
			Difficulty:        entity.DifficultyBeginner,
			TimeAvailableDays: 5,
			Mode:              entity.ModeHackathon,
		}),
		Provider: provider,
		Model:    "test-model",
	}
}

func TestIdeaBatchChainInvoke(t *testing.T) {
	fm := &fakeChatModel{content: ideasJSON(3)}
	factory := &fakeFactory{model: fm}
	c := NewIdeaBatchChain(factory)

	out, err := c.Invoke(context.Background(), testInput("openai"))
	require.NoError(t, err)
	require.Len(t, out.Ideas, 3)
	assert.Equal(t, "Idea 2", out.Ideas[1].Title)
	assert.Equal(t, "test-model", out.Model)
	assert.Equal(t, []string{"openai"}, factory.asked)

	require.Len(t, fm.lastInput, 2)
	assert.Equal(t, schema.System, fm.lastInput[0].Role)
	assert.Contains(t, fm.lastInput[1].Content, "Target audience: teachers")
}

func TestIdeaBatchChainFallsBackWithoutSchema(t *testing.T) {
	fm := &fakeChatModel{
		firstErr: errors.New("400 unsupported parameter: response_format"),
		content:  "```json\n" + ideasJSON(3) + "\n```",
	}
	c := NewIdeaBatchChain(&fakeFactory{model: fm})

	out, err := c.Invoke(context.Background(), testInput(""))
	require.NoError(t, err)
	assert.Len(t, out.Ideas, 3)
	assert.Equal(t, 2, fm.calls)
}

func TestIdeaBatchChainErrors(t *testing.T) {
	c := NewIdeaBatchChain(&fakeFactory{model: &fakeChatModel{content: "no ideas today"}})

	_, err := c.Invoke(context.Background(), testInput(""))
	assert.Error(t, err)

	_, err = c.Invoke(context.Background(), testInput("missing"))
	assert.Error(t, err)

	_, err = c.Invoke(context.Background(), &wfmodel.IdeaBatchInput{})
	assert.Error(t, err)

	_, err = NewIdeaBatchChain(nil).Invoke(context.Background(), testInput(""))
	assert.Error(t, err)
}
