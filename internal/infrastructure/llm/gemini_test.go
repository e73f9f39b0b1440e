package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"idea-forge-api/internal/config"
	"idea-forge-api/internal/domain/entity"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = cfg
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 20},
	}
}

func ideaArray(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"title":"G%d","tagline":"t","problem":"p","solution":"s","persona":"x","monetization":"y"}`, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func geminiRequest() entity.GenerationRequest {
	return entity.NewGenerationRequest(entity.GenerationRequestParams{
		Domain:            "health",
		Audience:          "nurses",
		Difficulty:        entity.DifficultyAdvanced,
		TimeAvailableDays: 30,
		Mode:              entity.ModeStartup,
		Constraints:       "mobile-first",
	})
}

func TestGeminiGenerator(t *testing.T) {
	fake := &fakeModels{resp: textResponse(ideaArray(3))}
	g := NewGeminiGenerator("gemini", config.ProviderConfig{Model: "gemini-2.5-flash"},
		config.GenerationConfig{Temperature: 0.7, MaxTokens: 4096})
	g.models = fake

	out, err := g.Generate(context.Background(), geminiRequest())
	require.NoError(t, err)
	require.Len(t, out.Ideas, 3)
	assert.Equal(t, "G0", out.Ideas[0].Title)
	assert.Equal(t, "gemini", out.Provider)
	assert.Equal(t, "gemini-2.5-flash", out.Model)

	assert.Equal(t, "gemini-2.5-flash", fake.model)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Equal(t, int32(4096), fake.config.MaxOutputTokens)
	require.NotNil(t, fake.config.SystemInstruction)
	require.Len(t, fake.contents, 1)
	assert.Contains(t, fake.contents[0].Parts[0].Text, "Target audience: nurses")
	assert.Contains(t, fake.contents[0].Parts[0].Text, "Constraints: mobile-first")
}

func TestGeminiGeneratorModelOverride(t *testing.T) {
	fake := &fakeModels{resp: textResponse(ideaArray(3))}
	g := NewGeminiGenerator("gemini", config.ProviderConfig{Model: "a"}, config.GenerationConfig{Model: "b"})
	g.models = fake

	_, err := g.Generate(context.Background(), geminiRequest())
	require.NoError(t, err)
	assert.Equal(t, "b", fake.model)
}

func TestGeminiGeneratorErrors(t *testing.T) {
	g := NewGeminiGenerator("gemini", config.ProviderConfig{Model: "m"}, config.GenerationConfig{})

	g.models = &fakeModels{err: errors.New("quota exceeded")}
	_, err := g.Generate(context.Background(), geminiRequest())
	assert.ErrorContains(t, err, "quota exceeded")

	g.models = &fakeModels{resp: &genai.GenerateContentResponse{}}
	_, err = g.Generate(context.Background(), geminiRequest())
	assert.ErrorIs(t, err, ErrEmptyResponse)

	g.models = &fakeModels{resp: textResponse("not json")}
	_, err = g.Generate(context.Background(), geminiRequest())
	assert.Error(t, err)
}
