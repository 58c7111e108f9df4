// Package llm - Google AI client via langchaingo.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIClient implements the Client interface on top of langchaingo's
// Google AI binding.
type GoogleAIClient struct {
	model string
	llm   llms.Model
}

// NewGoogleAIClient creates a langchaingo-backed Gemini client.
func NewGoogleAIClient(apiKey, model string) (*GoogleAIClient, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	m, err := googleai.New(
		context.Background(),
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini model: %w", err)
	}
	return &GoogleAIClient{model: model, llm: m}, nil
}

// Name identifies the configured model for diagnostics.
func (c *GoogleAIClient) Name() string { return c.model }

// Chat implements the Client interface.
func (c *GoogleAIClient) Chat(ctx context.Context, system, user string) (string, error) {
	prompt := user
	if strings.TrimSpace(system) != "" {
		prompt = system + "\n\n" + user
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
