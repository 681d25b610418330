// Package llms provides the model clients backing the engine's reflection
// and curation services.
package llms

import (
	"context"
	"errors"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	errs "github.com/helicon-ai/skillforge/pkg/errors"
	"github.com/helicon-ai/skillforge/pkg/logging"
)

// AnthropicLM is a minimal text-generation client for Anthropic models.
type AnthropicLM struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicLM creates a client for the given model. The API key is taken
// from the argument, falling back to ANTHROPIC_API_KEY.
func NewAnthropicLM(apiKey, model string) (*AnthropicLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.InvalidInput, "API key is required")
	}
	if model == "" {
		return nil, errs.New(errs.InvalidInput, "model is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicLM{
		client: &client,
		model:  anthropic.Model(model),
	}, nil
}

// ModelID returns the configured model identifier.
func (a *AnthropicLM) ModelID() string {
	return string(a.model)
}

// Generate sends a single-turn prompt and returns the response text.
func (a *AnthropicLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	logger := logging.GetLogger()

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: a.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens: int64(maxTokens),
	})

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return "", errs.WithFields(
			errs.Wrap(err, errs.ProcessingFailed, "failed to generate response"),
			errs.Fields{
				"model":      string(a.model),
				"max_tokens": maxTokens,
			})
	}

	if message == nil || len(message.Content) == 0 {
		return "", errs.New(errs.ProcessingFailed, "received empty content from Anthropic API")
	}

	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	logger.Debug(ctx, "Anthropic response: %d prompt tokens, %d completion tokens",
		message.Usage.InputTokens, message.Usage.OutputTokens)

	return responseText, nil
}
