package skills

import (
	"context"
	"os"

	"github.com/helicon-ai/skillforge/pkg/llms"
	"github.com/helicon-ai/skillforge/pkg/logging"
)

// NewFromEnv constructs an engine with services selected by availability.
//
// When the config names a model and ANTHROPIC_API_KEY is set, the engine
// gets model-backed reflection and curation. A named model with no usable
// credentials disables the engine permanently rather than degrading it
// silently to heuristics. An empty model selects the heuristic services.
func NewFromEnv(config Config) (*Engine, error) {
	if !config.Enabled || config.Model == "" {
		return New(config, nil, nil)
	}

	logger := logging.GetLogger()

	lm, err := llms.NewAnthropicLM(os.Getenv("ANTHROPIC_API_KEY"), config.Model)
	if err != nil {
		logger.Warn(context.Background(), "learning engine disabled: cannot construct %s client: %v", config.Model, err)
		config.Enabled = false
		return New(config, nil, nil)
	}

	return New(config,
		NewLLMReflector(lm, config.MaxTokens),
		NewLLMCurator(lm, config.MaxTokens))
}
