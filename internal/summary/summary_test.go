package summary

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/platinummonkey/inkpad/internal/geometry"
	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/logger"
)

type fakeClient struct {
	response string
	err      error
	calls    int
	model    string
	prompt   string
	image    string
}

func (f *fakeClient) Describe(ctx context.Context, model, imageData, prompt string) (string, error) {
	f.calls++
	f.model = model
	f.prompt = prompt
	f.image = imageData
	return f.response, f.err
}

func (f *fakeClient) HealthCheck(ctx context.Context, model string) error { return nil }
func (f *fakeClient) Name() string                                        { return "fake" }
func (f *fakeClient) SupportedModels() []string                           { return nil }

func drawnSurface() ink.Surface {
	s := ink.NewSurface(40, 30)
	return s.AppendStroke(ink.Stroke{
		Points: []geometry.Point{geometry.Pt(5, 5), geometry.Pt(35, 25)},
		Color:  "#000000",
		Width:  3,
		Kind:   ink.KindPen,
	})
}

func TestSummarizer_Summarize(t *testing.T) {
	client := &fakeClient{response: `{"summary": "  a diagonal line  "}`}
	s, err := NewSummarizer(&Config{Client: client, Model: "vision-1", Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("NewSummarizer() error = %v", err)
	}

	in := drawnSurface()
	out, err := s.Summarize(context.Background(), in)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if out.Summary != "a diagonal line" {
		t.Errorf("Summary = %q", out.Summary)
	}
	if in.Summary != "" {
		t.Error("input surface was modified")
	}
	if len(out.Paths) != 1 || out.ID != in.ID {
		t.Error("summarized surface lost its content")
	}
	if client.model != "vision-1" {
		t.Errorf("model = %q, want vision-1", client.model)
	}
	if !strings.Contains(client.prompt, `{"summary": "..."}`) {
		t.Errorf("prompt missing response format: %q", client.prompt)
	}

	data, err := base64.StdEncoding.DecodeString(client.image)
	if err != nil {
		t.Fatalf("image is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("image size = %v, want 40x30", b)
	}
}

func TestSummarizer_SkipsBlankSurface(t *testing.T) {
	client := &fakeClient{response: `{"summary": "x"}`}
	s, _ := NewSummarizer(&Config{Client: client, Logger: logger.Nop()})

	out, err := s.Summarize(context.Background(), ink.NewSurface(10, 10))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if client.calls != 0 {
		t.Errorf("calls = %d, want 0", client.calls)
	}
	if out.Summary != "" {
		t.Errorf("Summary = %q, want empty", out.Summary)
	}
}

func TestSummarizer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"provider error", &fakeClient{err: errors.New("boom")}},
		{"not json", &fakeClient{response: "a line"}},
		{"missing field", &fakeClient{response: `{"text": "a line"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := NewSummarizer(&Config{Client: tt.client, Logger: logger.Nop()})
			in := drawnSurface()
			out, err := s.Summarize(context.Background(), in)
			if err == nil {
				t.Fatal("Summarize() expected error")
			}
			if out.Summary != "" {
				t.Errorf("Summary = %q, want unchanged", out.Summary)
			}
		})
	}
}

func TestNewSummarizer(t *testing.T) {
	if _, err := NewSummarizer(&Config{}); err == nil {
		t.Error("NewSummarizer() expected error without client")
	}

	prompt := PromptConfig{Model: "custom", Prompt: "p"}
	s, err := NewSummarizer(&Config{Client: &fakeClient{}, Model: "configured", Prompt: &prompt})
	if err != nil {
		t.Fatal(err)
	}
	if s.Model() != "custom" {
		t.Errorf("Model() = %q, want prompt override", s.Model())
	}

	s, _ = NewSummarizer(&Config{Client: &fakeClient{}})
	if s.Model() != "" {
		t.Errorf("Model() = %q, want empty for unknown provider", s.Model())
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"summary": "notes"}`, "notes", false},
		{"fenced json", "```json\n{\"summary\": \"notes\"}\n```", "notes", false},
		{"fenced bare", "```\n{\"summary\": \"notes\"}\n```", "notes", false},
		{"surrounding space", "\n  {\"summary\": \"notes\"}  \n", "notes", false},
		{"empty summary", `{"summary": ""}`, "", false},
		{"missing field", `{}`, "", true},
		{"garbage", "nope", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSummary(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSummary() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadPromptConfig(t *testing.T) {
	cfg, err := LoadPromptConfig(strings.NewReader("model: llava\nprompt: |\n  Say {\"summary\": \"...\"}\n"))
	if err != nil {
		t.Fatalf("LoadPromptConfig() error = %v", err)
	}
	if cfg.Model != "llava" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.System != defaultSystem {
		t.Error("System should keep its default")
	}
	if !strings.HasPrefix(cfg.Text(), defaultSystem) || !strings.HasSuffix(cfg.Text(), `Say {"summary": "..."}`) {
		t.Errorf("Text() = %q", cfg.Text())
	}

	cfg, err = LoadPromptConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadPromptConfig(empty) error = %v", err)
	}
	if cfg != DefaultPrompt() {
		t.Error("empty input should yield the default prompt")
	}

	if _, err := LoadPromptConfig(strings.NewReader("prompt: ''\n")); err == nil {
		t.Error("expected error for empty prompt")
	}
	if _, err := LoadPromptConfig(strings.NewReader("prompt: [unclosed")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadPromptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	if err := os.WriteFile(path, []byte("system: ''\nprompt: describe\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPromptFile(path)
	if err != nil {
		t.Fatalf("LoadPromptFile() error = %v", err)
	}
	if cfg.Text() != "describe" {
		t.Errorf("Text() = %q, want describe", cfg.Text())
	}

	if _, err := LoadPromptFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateProviderConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *VisionClientConfig
		wantErr bool
	}{
		{"nil", nil, true},
		{"ollama", &VisionClientConfig{Provider: ProviderOllama, Model: "llava", Endpoint: "http://localhost:11434"}, false},
		{"ollama without endpoint", &VisionClientConfig{Provider: ProviderOllama, Model: "llava"}, true},
		{"google", &VisionClientConfig{Provider: ProviderGoogle, Model: "gemini-1.5-flash", APIKey: "k"}, false},
		{"google without key", &VisionClientConfig{Provider: ProviderGoogle, Model: "gemini-1.5-flash"}, true},
		{"missing model", &VisionClientConfig{Provider: ProviderOpenAI, APIKey: "k"}, true},
		{"unknown provider", &VisionClientConfig{Provider: "tesseract", Model: "m"}, true},
		{"temperature too high", &VisionClientConfig{Provider: ProviderAnthropic, Model: "m", APIKey: "k", Temperature: 2.5}, true},
		{"negative retries", &VisionClientConfig{Provider: ProviderAnthropic, Model: "m", APIKey: "k", MaxRetries: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProviderConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProviderConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewVisionClient(t *testing.T) {
	ctx := context.Background()
	for _, p := range []ProviderType{ProviderGoogle, ProviderOpenAI, ProviderAnthropic} {
		if _, err := NewVisionClient(ctx, &VisionClientConfig{Provider: p}, logger.Nop()); err == nil {
			t.Errorf("NewVisionClient(%s) expected error without API key", p)
		}
	}

	if _, err := NewVisionClient(ctx, &VisionClientConfig{Provider: "nope"}, logger.Nop()); err == nil {
		t.Error("NewVisionClient() expected error for unknown provider")
	}

	tests := []struct {
		provider ProviderType
		name     string
	}{
		{ProviderOllama, "ollama"},
		{ProviderOpenAI, "openai"},
		{ProviderAnthropic, "anthropic"},
	}
	for _, tt := range tests {
		client, err := NewVisionClient(ctx, &VisionClientConfig{Provider: tt.provider, APIKey: "k", MaxRetries: 1}, logger.Nop())
		if err != nil {
			t.Fatalf("NewVisionClient(%s) error = %v", tt.provider, err)
		}
		if client.Name() != tt.name || len(client.SupportedModels()) == 0 {
			t.Errorf("client %s: name %q, %d models", tt.provider, client.Name(), len(client.SupportedModels()))
		}
	}
}

func TestDefaultModelForProvider(t *testing.T) {
	for _, p := range []ProviderType{ProviderGoogle, ProviderOllama, ProviderOpenAI, ProviderAnthropic} {
		if DefaultModelForProvider(p) == "" {
			t.Errorf("DefaultModelForProvider(%s) is empty", p)
		}
	}
	if DefaultModelForProvider("other") != "" {
		t.Error("unknown provider should have no default model")
	}
}

func TestOllamaVisionClient(t *testing.T) {
	var pulled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/api/tags":
			w.Write([]byte(`{"models": [{"name": "moondream:latest"}]}`))
		case "/api/pull":
			pulled = true
			w.Write([]byte(`{"status": "success"}`))
		case "/api/generate":
			var req struct {
				Images []string `json:"images"`
				Format string   `json:"format"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.Images) != 1 || req.Format != "json" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"response": "{\"summary\": \"a sketch\"}", "done": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewOllamaVisionClient(server.URL, 0, 0, logger.Nop())
	ctx := context.Background()

	if err := client.HealthCheck(ctx, "moondream"); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if pulled {
		t.Error("available model should not be pulled")
	}
	if err := client.HealthCheck(ctx, "llava"); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if !pulled {
		t.Error("missing model should be pulled")
	}

	s, _ := NewSummarizer(&Config{Client: client, Logger: logger.Nop()})
	if s.Model() != "llava" {
		t.Errorf("Model() = %q, want ollama default", s.Model())
	}
	out, err := s.Summarize(ctx, drawnSurface())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out.Summary != "a sketch" {
		t.Errorf("Summary = %q", out.Summary)
	}
}
