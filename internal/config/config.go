// Package config provides configuration management for inkpad.
package config

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names (INKPAD_LOG_LEVEL)
const EnvPrefix = "INKPAD"

// Config holds all configuration settings for inkpad.
// Configuration precedence: CLI flags > Environment variables > Config file > Defaults
type Config struct {
	// StoreFile is the path to the surface store
	StoreFile string

	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string

	// LogFormat is console or json
	LogFormat string

	// EraserRadius is the hit-test radius in canvas pixels
	EraserRadius float64

	// HighlighterAlpha is the paint alpha of highlighter strokes
	HighlighterAlpha float64

	// DisplayWidth and DisplayHeight size new blank surfaces
	DisplayWidth  int
	DisplayHeight int

	// SlideDPI is the rasterization density for imported PDF pages
	SlideDPI int

	// SlideMaxWidth bounds the width of imported slide images
	SlideMaxWidth int

	// PromptFile optionally overrides the summary prompt
	PromptFile string

	Remote RemoteConfig
	LLM    LLMConfig
}

// RemoteConfig holds the optional remote sync settings
type RemoteConfig struct {
	// Endpoint is the base URL of the remote surface store (empty disables sync)
	Endpoint string

	// Timeout bounds each remote request
	Timeout time.Duration
}

// LLMConfig holds configuration for surface summary providers
type LLMConfig struct {
	// Provider is the LLM provider to use (google, ollama, openai, anthropic)
	Provider string

	// Model is the specific model to use; empty selects the provider default
	Model string

	// Endpoint is the API endpoint (primarily for Ollama)
	Endpoint string

	// APIKey is loaded from the macOS Keychain when UseKeychain is set,
	// otherwise from GOOGLE_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY
	APIKey string

	// MaxRetries is the maximum number of retry attempts for API calls
	MaxRetries int

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float64

	// UseKeychain enables macOS Keychain lookup for API keys (macOS only)
	UseKeychain bool

	// KeychainServicePrefix names keychain services {prefix}-{provider}
	KeychainServicePrefix string
}

// Load reads configuration from multiple sources and returns a Config instance.
// flags may be nil; when set, every flag whose name matches a key overrides it.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".inkpad")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	config := &Config{
		StoreFile:        v.GetString("store-file"),
		LogLevel:         v.GetString("log-level"),
		LogFormat:        v.GetString("log-format"),
		EraserRadius:     v.GetFloat64("eraser-radius"),
		HighlighterAlpha: v.GetFloat64("highlighter-alpha"),
		DisplayWidth:     v.GetInt("display-width"),
		DisplayHeight:    v.GetInt("display-height"),
		SlideDPI:         v.GetInt("slide-dpi"),
		SlideMaxWidth:    v.GetInt("slide-max-width"),
		PromptFile:       v.GetString("prompt-file"),
		Remote: RemoteConfig{
			Endpoint: v.GetString("remote-endpoint"),
			Timeout:  v.GetDuration("remote-timeout"),
		},
		LLM: LLMConfig{
			Provider:              v.GetString("llm-provider"),
			Model:                 v.GetString("llm-model"),
			Endpoint:              v.GetString("llm-endpoint"),
			MaxRetries:            v.GetInt("llm-max-retries"),
			Temperature:           v.GetFloat64("llm-temperature"),
			UseKeychain:           v.GetBool("llm-use-keychain"),
			KeychainServicePrefix: v.GetString("llm-keychain-service-prefix"),
		},
	}

	config.LLM.APIKey = loadAPIKeyForProvider(config.LLM.Provider, config.LLM.UseKeychain, config.LLM.KeychainServicePrefix)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("store-file", filepath.Join(home, ".inkpad", "surfaces.json"))
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")
	v.SetDefault("eraser-radius", 10.0)
	v.SetDefault("highlighter-alpha", 0.4)
	v.SetDefault("display-width", 1024)
	v.SetDefault("display-height", 768)
	v.SetDefault("slide-dpi", 150)
	v.SetDefault("slide-max-width", 1600)
	v.SetDefault("prompt-file", "")

	v.SetDefault("remote-endpoint", "")
	v.SetDefault("remote-timeout", 10*time.Second)

	v.SetDefault("llm-provider", "google")
	v.SetDefault("llm-model", "")
	v.SetDefault("llm-endpoint", "http://localhost:11434")
	v.SetDefault("llm-max-retries", 3)
	v.SetDefault("llm-temperature", 0.0)
	v.SetDefault("llm-use-keychain", false)
	v.SetDefault("llm-keychain-service-prefix", "inkpad")
}

// Validate checks ranges and normalizes paths and enum values. API keys
// are not required here; see ValidateLLM.
func (c *Config) Validate() error {
	if c.StoreFile == "" {
		return fmt.Errorf("store-file cannot be empty")
	}
	if strings.HasPrefix(c.StoreFile, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to expand home directory in store-file: %w", err)
		}
		c.StoreFile = filepath.Join(home, c.StoreFile[2:])
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log-level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log-format %q, must be console or json", c.LogFormat)
	}

	if c.EraserRadius <= 0 {
		return fmt.Errorf("eraser-radius must be positive, got %f", c.EraserRadius)
	}
	if c.HighlighterAlpha <= 0 || c.HighlighterAlpha > 1 {
		return fmt.Errorf("highlighter-alpha must be in (0, 1], got %f", c.HighlighterAlpha)
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.DisplayWidth, c.DisplayHeight)
	}
	if c.SlideDPI <= 0 {
		return fmt.Errorf("slide-dpi must be positive, got %d", c.SlideDPI)
	}
	if c.SlideMaxWidth <= 0 {
		return fmt.Errorf("slide-max-width must be positive, got %d", c.SlideMaxWidth)
	}

	if c.Remote.Endpoint != "" {
		u, err := url.Parse(c.Remote.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid remote-endpoint %q", c.Remote.Endpoint)
		}
		if c.Remote.Timeout <= 0 {
			return fmt.Errorf("remote-timeout must be positive when remote-endpoint is set")
		}
	}

	validProviders := map[string]bool{
		"google":    true,
		"ollama":    true,
		"openai":    true,
		"anthropic": true,
	}
	if !validProviders[strings.ToLower(c.LLM.Provider)] {
		return fmt.Errorf("invalid llm-provider %q, must be one of: google, ollama, openai, anthropic", c.LLM.Provider)
	}
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)

	if c.LLM.Temperature < 0.0 || c.LLM.Temperature > 2.0 {
		return fmt.Errorf("llm-temperature must be between 0.0 and 2.0, got %f", c.LLM.Temperature)
	}

	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm-max-retries must be non-negative, got %d", c.LLM.MaxRetries)
	}

	return nil
}

// ValidateLLM checks that the configured provider can be reached
func (c *Config) ValidateLLM() error {
	if c.LLM.Provider == "ollama" && c.LLM.Endpoint == "" {
		return fmt.Errorf("llm-endpoint cannot be empty for Ollama provider")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return fmt.Errorf("API key not found for provider %s, check environment variables", c.LLM.Provider)
	}
	return nil
}

func loadAPIKeyForProvider(provider string, useKeychain bool, keychainPrefix string) string {
	if useKeychain {
		if key := loadFromKeychain(provider, keychainPrefix); key != "" {
			return key
		}
	}

	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "google":
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}

// loadFromKeychain reads {prefix}-{provider} from the macOS Keychain.
// Returns "" when not found or on other platforms.
func loadFromKeychain(provider, prefix string) string {
	if !isMacOS() {
		return ""
	}

	serviceName := fmt.Sprintf("%s-%s", prefix, strings.ToLower(provider))
	output, err := exec.Command("security", "find-generic-password", "-s", serviceName, "-w").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

func isMacOS() bool {
	return runtime.GOOS == "darwin"
}

// String returns a string representation of the configuration (with sensitive data redacted)
func (c *Config) String() string {
	apiKey := "not set"
	if c.LLM.APIKey != "" {
		if len(c.LLM.APIKey) > 8 {
			apiKey = "***" + c.LLM.APIKey[len(c.LLM.APIKey)-4:]
		} else {
			apiKey = "***"
		}
	}

	remote := c.Remote.Endpoint
	if remote == "" {
		remote = "disabled"
	}

	model := c.LLM.Model
	if model == "" {
		model = "provider default"
	}

	return fmt.Sprintf(`Configuration:
  StoreFile: %s
  LogLevel: %s
  LogFormat: %s
  EraserRadius: %.1f
  HighlighterAlpha: %.2f
  Display: %dx%d
  SlideDPI: %d
  SlideMaxWidth: %d
  PromptFile: %s
  Remote:
    Endpoint: %s
    Timeout: %s
  LLM:
    Provider: %s
    Model: %s
    Endpoint: %s
    APIKey: %s
    MaxRetries: %d
    Temperature: %.2f
    UseKeychain: %t
    KeychainServicePrefix: %s`,
		c.StoreFile,
		c.LogLevel,
		c.LogFormat,
		c.EraserRadius,
		c.HighlighterAlpha,
		c.DisplayWidth, c.DisplayHeight,
		c.SlideDPI,
		c.SlideMaxWidth,
		c.PromptFile,
		remote,
		c.Remote.Timeout,
		c.LLM.Provider,
		model,
		c.LLM.Endpoint,
		apiKey,
		c.LLM.MaxRetries,
		c.LLM.Temperature,
		c.LLM.UseKeychain,
		c.LLM.KeychainServicePrefix,
	)
}
