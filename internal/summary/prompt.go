package summary

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultSystem = `You look at a single page from a freehand drawing canvas.
The page may contain handwriting, sketches, diagrams, highlights and an imported slide.`

const defaultPrompt = `Describe what is on this page in one or two sentences.
Transcribe any legible handwriting verbatim when it is short.
Return ONLY valid JSON with no markdown formatting and no explanation.

Format:
{"summary": "..."}

Return {"summary": ""} if the page is empty.`

// PromptConfig is the YAML-loadable prompt template
type PromptConfig struct {
	// Model overrides the configured model when set
	Model  string `yaml:"model"`
	System string `yaml:"system"`
	Prompt string `yaml:"prompt"`
}

// DefaultPrompt returns the built-in prompt
func DefaultPrompt() PromptConfig {
	return PromptConfig{
		System: defaultSystem,
		Prompt: defaultPrompt,
	}
}

// Text joins the system and user parts into the text sent with the image
func (p PromptConfig) Text() string {
	system := strings.TrimSpace(p.System)
	prompt := strings.TrimSpace(p.Prompt)
	if system == "" {
		return prompt
	}
	return system + "\n\n" + prompt
}

// LoadPromptConfig decodes a prompt template; missing fields keep their defaults
func LoadPromptConfig(r io.Reader) (PromptConfig, error) {
	cfg := DefaultPrompt()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return PromptConfig{}, fmt.Errorf("failed to parse prompt config: %w", err)
	}
	if strings.TrimSpace(cfg.Prompt) == "" {
		return PromptConfig{}, fmt.Errorf("prompt config has an empty prompt")
	}
	return cfg, nil
}

// LoadPromptFile reads a prompt template from path
func LoadPromptFile(path string) (PromptConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return PromptConfig{}, fmt.Errorf("failed to open prompt file: %w", err)
	}
	defer f.Close()
	return LoadPromptConfig(f)
}
