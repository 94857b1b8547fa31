package llm

import (
	"context"
	"fmt"
	"strings"

	"ProductJudge/internal/domain"
	"ProductJudge/internal/ports"
)

// RationaleWriter asks the backend to phrase a paragraph for an already fixed verdict.
type RationaleWriter struct {
	chat ports.ChatClient
}

var _ ports.RationaleWriter = (*RationaleWriter)(nil)

// NewRationaleWriter wraps a chat client.
func NewRationaleWriter(chat ports.ChatClient) *RationaleWriter {
	return &RationaleWriter{chat: chat}
}

// Explain returns the backend paragraph. Replies that quote none of the arguments are rejected.
func (w *RationaleWriter) Explain(ctx context.Context, req domain.Request, pros, cons domain.ArgumentSet, d domain.Decision) (string, error) {
	if w.chat == nil {
		return "", fmt.Errorf("%w: reasoning backend is not configured", domain.ErrGeneration)
	}

	reply, err := w.chat.Complete(ctx, rationaleSystemPrompt, rationaleUserPrompt(req, pros, cons, d))
	if err != nil {
		return "", fmt.Errorf("%w: rationale: %w", domain.ErrGeneration, err)
	}

	if i := strings.LastIndex(reply, "</think>"); i >= 0 {
		reply = reply[i+len("</think>"):]
	}
	text := strings.TrimSpace(reply)
	if text == "" {
		return "", fmt.Errorf("%w: rationale: empty reply", domain.ErrGeneration)
	}
	if !citesAny(text, pros, cons) {
		return "", fmt.Errorf("%w: rationale cites no argument", domain.ErrGeneration)
	}
	return text, nil
}

func citesAny(text string, sets ...domain.ArgumentSet) bool {
	lowered := strings.ToLower(text)
	for _, set := range sets {
		for _, a := range set.Arguments {
			if a.Text != "" && strings.Contains(lowered, strings.ToLower(a.Text)) {
				return true
			}
		}
	}
	return false
}
