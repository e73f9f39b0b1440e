package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowProviderContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", WorkflowFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))

	ctx = WithWorkflowProvider(ctx, " idea_batch ", "")
	assert.Equal(t, "idea_batch", WorkflowFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))

	ctx = WithWorkflowProvider(ctx, "", "gemini")
	assert.Equal(t, "idea_batch", WorkflowFromContext(ctx))
	assert.Equal(t, "gemini", ProviderFromContext(ctx))
}
