package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdeaBatchTemplate(t *testing.T) {
	r := NewRegistry()

	tpl, err := r.ChatTemplate(PromptIdeaBatchV1)
	require.NoError(t, err)

	again, err := r.ChatTemplate(PromptIdeaBatchV1)
	require.NoError(t, err)
	assert.Same(t, tpl, again)

	msgs, err := tpl.Format(context.Background(),
		IdeaBatchVars("education", "teachers", "beginner", 5, "", "Hackathon", ""))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, `"ideas"`)
	assert.Contains(t, msgs[1].Content, "Domain: education")
	assert.Contains(t, msgs[1].Content, "Time available: 5 days")
	assert.Contains(t, msgs[1].Content, "Skills: none specified")
}

func TestRenderMatchesTemplate(t *testing.T) {
	r := NewRegistry()
	_, user, err := r.Texts(PromptIdeaBatchV1)
	require.NoError(t, err)

	out := Render(user, IdeaBatchVars("fintech", "students", "advanced", 30, "Go", "Startup", "no hardware"))
	assert.Contains(t, out, "Target audience: students")
	assert.Contains(t, out, "Constraints: no hardware")
	assert.NotContains(t, out, "{")
}

func TestUnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate(PromptID("missing"))
	assert.Error(t, err)
}
