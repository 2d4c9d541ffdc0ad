package summary

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/platinummonkey/inkpad/internal/compositor"
	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/logger"
)

// Summarizer annotates surfaces with a model-generated summary
type Summarizer struct {
	client  VisionClient
	model   string
	prompt  PromptConfig
	options *compositor.Options
	logger  *logger.Logger
}

// Config holds configuration for a Summarizer
type Config struct {
	Client VisionClient
	Model  string

	// Prompt defaults to DefaultPrompt when nil
	Prompt *PromptConfig

	// Options are the compositor options used to render the page image
	Options *compositor.Options
	Logger  *logger.Logger
}

// NewSummarizer creates a summarizer. Client is required.
func NewSummarizer(cfg *Config) (*Summarizer, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("vision client is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	prompt := DefaultPrompt()
	if cfg.Prompt != nil {
		prompt = *cfg.Prompt
	}

	model := cfg.Model
	if prompt.Model != "" {
		model = prompt.Model
	}
	if model == "" {
		model = DefaultModelForProvider(ProviderType(cfg.Client.Name()))
	}

	return &Summarizer{
		client:  cfg.Client,
		model:   model,
		prompt:  prompt,
		options: cfg.Options,
		logger:  log,
	}, nil
}

// Model returns the model the summarizer sends requests to
func (s *Summarizer) Model() string {
	return s.model
}

// Summarize returns a copy of surface with Summary set. Blank surfaces are
// returned unchanged without contacting the provider.
func (s *Summarizer) Summarize(ctx context.Context, surface ink.Surface) (ink.Surface, error) {
	log := s.logger.WithSurfaceID(surface.ID).WithOperation("summarize")

	if surface.IsBlank() {
		log.Debug("Skipping blank surface")
		return surface, nil
	}

	imageData, err := s.encodeFrame(surface)
	if err != nil {
		return surface, err
	}

	start := time.Now()
	raw, err := s.client.Describe(ctx, s.model, imageData, s.prompt.Text())
	if err != nil {
		return surface, fmt.Errorf("failed to describe surface: %w", err)
	}

	text, err := ParseSummary(raw)
	if err != nil {
		log.WithFields("content", raw).Debug("Failed to parse summary response")
		return surface, err
	}

	log.WithFields(
		"provider", s.client.Name(),
		"model", s.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"length", len(text),
	).Info("Surface summarized")

	next := surface.WithSummary(text)
	next.Touch()
	return next, nil
}

func (s *Summarizer) encodeFrame(surface ink.Surface) (string, error) {
	var buf bytes.Buffer
	if err := compositor.ForSurface(surface, s.options).EncodePNG(&buf, surface); err != nil {
		return "", fmt.Errorf("failed to render surface: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ParseSummary extracts the summary field from a model response. Markdown
// code fences around the JSON are tolerated.
func ParseSummary(raw string) (string, error) {
	content := stripFences(strings.TrimSpace(raw))

	var resp struct {
		Summary *string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return "", fmt.Errorf("failed to parse summary response: %w", err)
	}
	if resp.Summary == nil {
		return "", fmt.Errorf("summary response has no summary field")
	}
	return strings.TrimSpace(*resp.Summary), nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
