package classifier

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// OpenAIClassifier classifies statements with the chat completions API.
type OpenAIClassifier struct {
	client *openai.Client
	cfg    Config
	logger zerolog.Logger
}

// NewOpenAI creates an OpenAIClassifier. An empty baseURL uses the public endpoint.
func NewOpenAI(apiKey, baseURL string, cfg Config, logger zerolog.Logger) *OpenAIClassifier {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg.withDefaults(DefaultOpenAIModel),
		logger: logger,
	}
}

// Classify returns the content of the top completion choice verbatim.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserMessage(text)},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.cfg.Model).Msg("openai chat completion failed")
		return "", fmt.Errorf("%w: %v", domain.ErrExternalServiceFailure, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrExternalServiceFailure)
	}

	c.logger.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("openai chat completion")

	return resp.Choices[0].Message.Content, nil
}

var _ usecase.Classifier = (*OpenAIClassifier)(nil)
