package domain

import "context"

// Completer turns a system prompt and a user message into raw model text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}
