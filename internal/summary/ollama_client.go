package summary

import (
	"context"
	"fmt"

	"github.com/platinummonkey/inkpad/internal/logger"
	"github.com/platinummonkey/inkpad/internal/ollama"
)

// OllamaVisionClient adapts the Ollama HTTP client to VisionClient
type OllamaVisionClient struct {
	client      *ollama.Client
	logger      *logger.Logger
	temperature float64
}

// NewOllamaVisionClient creates a new Ollama vision client
func NewOllamaVisionClient(endpoint string, temperature float64, maxRetries int, log *logger.Logger) *OllamaVisionClient {
	if log == nil {
		log = logger.Get()
	}

	clientOpts := []ollama.ClientOption{
		ollama.WithLogger(log),
	}
	if endpoint != "" {
		clientOpts = append(clientOpts, ollama.WithEndpoint(endpoint))
	}
	if maxRetries > 0 {
		clientOpts = append(clientOpts, ollama.WithMaxRetries(maxRetries))
	}

	return &OllamaVisionClient{
		client:      ollama.NewClient(clientOpts...),
		logger:      log,
		temperature: temperature,
	}
}

// Describe runs a JSON-format generation with the image attached
func (o *OllamaVisionClient) Describe(ctx context.Context, model string, imageData string, prompt string) (string, error) {
	o.logger.WithFields("model", model, "provider", "ollama").Debug("Describing surface with Ollama")

	resp, err := o.client.GenerateWithVision(ctx, model, "", prompt, []string{imageData}, o.temperature)
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("no response from Ollama")
	}
	return resp.Response, nil
}

// HealthCheck verifies that Ollama is running and pulls the model if missing
func (o *OllamaVisionClient) HealthCheck(ctx context.Context, model string) error {
	if err := o.client.HealthCheck(ctx); err != nil {
		return err
	}

	found, err := o.client.HasModel(ctx, model)
	if err != nil {
		return err
	}
	if !found {
		o.logger.WithFields("model", model).Info("Model not found, pulling...")
		if err := o.client.PullModel(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the provider name
func (o *OllamaVisionClient) Name() string {
	return "ollama"
}

// SupportedModels returns commonly used Ollama vision models
func (o *OllamaVisionClient) SupportedModels() []string {
	return []string{
		"llava",
		"llava:13b",
		"llava-phi3",
		"bakllava",
		"moondream",
	}
}
