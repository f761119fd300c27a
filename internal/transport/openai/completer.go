package openai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/metrics"
)

// CompleterConfig holds the chat completion settings. Temperature and
// MaxTokens are fixed per deployment.
type CompleterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Completer implements domain.Completer over the chat completions API.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewCompleter creates an OpenAI-compatible chat client.
func NewCompleter(cfg CompleterConfig) *Completer {
	return &Completer{
		client:      newClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete sends the system prompt and user message and returns the raw reply.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: wireTemperature(c.temperature),
		MaxTokens:   c.maxTokens,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		observe(metrics.ServiceCompletion, c.model, start, err)
		return "", parseAPIError("completion", err)
	}

	if len(resp.Choices) == 0 {
		err = fmt.Errorf("completion response has no choices: %w", domain.ErrUpstreamFailure)
	} else if strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		err = fmt.Errorf("completion response has empty content: %w", domain.ErrUpstreamFailure)
	}
	observe(metrics.ServiceCompletion, c.model, start, err)
	if err != nil {
		return "", err
	}

	metrics.UpstreamTokensTotal.WithLabelValues(metrics.ServiceCompletion, c.model, "prompt").
		Add(float64(resp.Usage.PromptTokens))
	metrics.UpstreamTokensTotal.WithLabelValues(metrics.ServiceCompletion, c.model, "completion").
		Add(float64(resp.Usage.CompletionTokens))
	domain.UsageFromContext(ctx).AddCompletionTokens(resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// wireTemperature keeps a configured 0 on the wire. The request field is
// omitempty, and an omitted temperature makes the provider use its default of 1.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
