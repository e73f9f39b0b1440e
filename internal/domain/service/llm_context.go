// Package service 定义跨层的领域服务契约
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

// WithWorkflowProvider 在上下文中记录当前工作流与提供商，供 callbacks 打点使用
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	if w := strings.TrimSpace(workflow); w != "" {
		ctx = context.WithValue(ctx, llmCtxKeyWorkflow, w)
	}
	if p := strings.TrimSpace(provider); p != "" {
		ctx = context.WithValue(ctx, llmCtxKeyProvider, p)
	}
	return ctx
}

// WorkflowFromContext 读取工作流名称，缺省为 unknown
func WorkflowFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyWorkflow)
}

// ProviderFromContext 读取提供商名称，缺省为 unknown
func ProviderFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyProvider)
}

func stringFromContext(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
