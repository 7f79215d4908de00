package classifier

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// GeminiClassifier classifies statements with the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	cfg    Config
	logger zerolog.Logger
}

// NewGemini creates a GeminiClassifier. An empty baseURL uses the public endpoint.
func NewGemini(ctx context.Context, apiKey, baseURL string, cfg Config, logger zerolog.Logger) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		cfg:    cfg.withDefaults(DefaultGeminiModel),
		logger: logger,
	}, nil
}

// Classify returns the text of the first candidate verbatim.
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(UserMessage(text)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(c.cfg.MaxTokens),
		Temperature:       genai.Ptr(c.cfg.Temperature),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.cfg.Model).Msg("gemini generate content failed")
		return "", fmt.Errorf("%w: %v", domain.ErrExternalServiceFailure, err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", domain.ErrExternalServiceFailure)
	}

	return resp.Text(), nil
}

var _ usecase.Classifier = (*GeminiClassifier)(nil)
