package summary

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/platinummonkey/inkpad/internal/logger"
	"google.golang.org/api/option"
)

// GoogleVisionClient implements VisionClient for Google's Gemini API
type GoogleVisionClient struct {
	client      *genai.Client
	logger      *logger.Logger
	temperature float64
}

// NewGoogleVisionClient creates a Gemini client authenticated with apiKey
func NewGoogleVisionClient(ctx context.Context, apiKey string, temperature float64, log *logger.Logger) (*GoogleVisionClient, error) {
	if log == nil {
		log = logger.Get()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GoogleVisionClient{
		client:      client,
		logger:      log,
		temperature: temperature,
	}, nil
}

// Describe sends the image to Gemini and requests a JSON response
func (g *GoogleVisionClient) Describe(ctx context.Context, model string, imageData string, prompt string) (string, error) {
	g.logger.WithFields("model", model, "provider", "google").Debug("Describing surface with Google Gemini")

	imgBytes, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	genModel := g.client.GenerativeModel(model)
	genModel.SetTemperature(float32(g.temperature))
	genModel.ResponseMIMEType = "application/json"

	resp, err := genModel.GenerateContent(ctx, genai.Text(prompt), genai.ImageData("png", imgBytes))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok && txt != "" {
			return string(txt), nil
		}
	}
	return "", fmt.Errorf("no text content in Gemini response")
}

// HealthCheck makes a minimal call to verify credentials
func (g *GoogleVisionClient) HealthCheck(ctx context.Context, model string) error {
	if _, err := g.client.GenerativeModel(model).GenerateContent(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// Name returns the provider name
func (g *GoogleVisionClient) Name() string {
	return "google"
}

// SupportedModels returns Gemini models with vision input
func (g *GoogleVisionClient) SupportedModels() []string {
	return []string{
		"gemini-1.5-flash",
		"gemini-1.5-flash-latest",
		"gemini-1.5-pro",
		"gemini-1.5-pro-latest",
		"gemini-2.0-flash",
	}
}

// Close closes the Google client
func (g *GoogleVisionClient) Close() error {
	return g.client.Close()
}
