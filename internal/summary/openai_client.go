package summary

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/platinummonkey/inkpad/internal/logger"
)

// OpenAIVisionClient implements VisionClient for OpenAI's chat completions API
type OpenAIVisionClient struct {
	client      openai.Client
	logger      *logger.Logger
	temperature float64
}

// NewOpenAIVisionClient creates a new OpenAI vision client
func NewOpenAIVisionClient(apiKey string, temperature float64, maxRetries int, log *logger.Logger) *OpenAIVisionClient {
	if log == nil {
		log = logger.Get()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if maxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(maxRetries))
	}

	return &OpenAIVisionClient{
		client:      openai.NewClient(opts...),
		logger:      log,
		temperature: temperature,
	}
}

// Describe sends the image as a data URL alongside the prompt
func (o *OpenAIVisionClient) Describe(ctx context.Context, model string, imageData string, prompt string) (string, error) {
	o.logger.WithFields("model", model, "provider", "openai").Debug("Describing surface with OpenAI")

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: "data:image/png;base64," + imageData,
				}),
			}),
		},
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies credentials by looking up the model
func (o *OpenAIVisionClient) HealthCheck(ctx context.Context, model string) error {
	if _, err := o.client.Models.Get(ctx, model); err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}

// Name returns the provider name
func (o *OpenAIVisionClient) Name() string {
	return "openai"
}

// SupportedModels returns OpenAI models with vision input
func (o *OpenAIVisionClient) SupportedModels() []string {
	return []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4-turbo",
	}
}
