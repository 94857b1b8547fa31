package ports

import (
	"context"

	"ProductJudge/internal/domain"
)

// ContentFetcher returns product text for a URL and keyword list.
type ContentFetcher interface {
	Fetch(ctx context.Context, req domain.Request) (domain.Content, error)
}

// ArgumentGenerator asks a reasoning backend for arguments of one polarity.
type ArgumentGenerator interface {
	Polarity() domain.Polarity
	Generate(ctx context.Context, text string) (domain.ArgumentSet, error)
}

// RationaleWriter phrases a rationale for a verdict that is already decided.
type RationaleWriter interface {
	Explain(ctx context.Context, req domain.Request, pros, cons domain.ArgumentSet, decision domain.Decision) (string, error)
}

// ChatClient sends one system + user prompt pair to an LLM API and returns the raw reply.
type ChatClient interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
