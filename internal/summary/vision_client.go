// Package summary produces short text descriptions of surfaces using
// vision-capable LLM providers.
package summary

import "context"

// VisionClient is a vision-capable LLM provider
type VisionClient interface {
	// Describe sends a base64-encoded PNG with a prompt and returns the raw
	// text the model answered with
	Describe(ctx context.Context, model string, imageData string, prompt string) (string, error)

	// HealthCheck verifies that the provider is accessible and the model is available
	HealthCheck(ctx context.Context, model string) error

	// Name returns the provider name (e.g., "ollama", "openai", "anthropic", "google")
	Name() string

	// SupportedModels returns commonly used model names for this provider
	SupportedModels() []string
}

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	// ProviderGoogle represents Google's Gemini API
	ProviderGoogle ProviderType = "google"

	// ProviderOllama represents a local Ollama instance
	ProviderOllama ProviderType = "ollama"

	// ProviderOpenAI represents OpenAI's chat completions API
	ProviderOpenAI ProviderType = "openai"

	// ProviderAnthropic represents Anthropic's messages API
	ProviderAnthropic ProviderType = "anthropic"
)

// VisionClientConfig holds common configuration for all vision clients
type VisionClientConfig struct {
	// Provider is the LLM provider type (google, ollama, openai, anthropic)
	Provider ProviderType

	// Model is the specific model to use
	Model string

	// Endpoint is the API endpoint (Ollama only)
	Endpoint string

	// APIKey is the API key for cloud providers
	APIKey string

	// MaxRetries is the maximum number of retry attempts
	MaxRetries int

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float64
}
