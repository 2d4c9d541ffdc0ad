package summary

import (
	"context"
	"fmt"

	"github.com/platinummonkey/inkpad/internal/logger"
)

// NewVisionClient creates a vision client based on the provider configuration
func NewVisionClient(ctx context.Context, cfg *VisionClientConfig, log *logger.Logger) (VisionClient, error) {
	if log == nil {
		log = logger.Get()
	}

	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaVisionClient(cfg.Endpoint, cfg.Temperature, cfg.MaxRetries, log), nil

	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY environment variable)")
		}
		return NewOpenAIVisionClient(cfg.APIKey, cfg.Temperature, cfg.MaxRetries, log), nil

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required (set ANTHROPIC_API_KEY environment variable)")
		}
		return NewAnthropicVisionClient(cfg.APIKey, cfg.Temperature, cfg.MaxRetries, log), nil

	case ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("google API key is required (set GOOGLE_API_KEY environment variable)")
		}
		client, err := NewGoogleVisionClient(ctx, cfg.APIKey, cfg.Temperature, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google vision client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: google, ollama, openai, anthropic)", cfg.Provider)
	}
}

// ValidateProviderConfig validates that the provider configuration is complete
func ValidateProviderConfig(cfg *VisionClientConfig) error {
	if cfg == nil {
		return fmt.Errorf("vision client config is nil")
	}

	switch cfg.Provider {
	case ProviderOllama:
		if cfg.Endpoint == "" {
			return fmt.Errorf("endpoint is required for Ollama provider")
		}
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
		if cfg.APIKey == "" {
			return fmt.Errorf("API key is required for %s provider", cfg.Provider)
		}
	default:
		return fmt.Errorf("invalid provider: %s", cfg.Provider)
	}

	if cfg.Model == "" {
		return fmt.Errorf("model is required")
	}

	if cfg.Temperature < 0.0 || cfg.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", cfg.Temperature)
	}

	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", cfg.MaxRetries)
	}

	return nil
}

// DefaultModelForProvider returns a recommended default model for the provider
func DefaultModelForProvider(provider ProviderType) string {
	switch provider {
	case ProviderOllama:
		return "llava"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderGoogle:
		return "gemini-1.5-flash"
	default:
		return ""
	}
}
