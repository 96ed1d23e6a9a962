package domain

import (
	"context"
)

// KnowledgeSource supplies the raw rows a KnowledgeBase is built from.
type KnowledgeSource interface {
	Name() string
	Rows(ctx context.Context) ([][]string, error)
}

// LLMClient is the fallback capability: one system instruction, one user
// message, one generated reply.
type LLMClient interface {
	Provider() string
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}
