package ollama

import "time"

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system,omitempty"`
	Prompt  string                 `json:"prompt"`
	Images  []string               `json:"images,omitempty"` // base64 encoded
	Stream  bool                   `json:"stream"`
	Format  string                 `json:"format,omitempty"` // "json" for structured output
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse is a non-streaming generate response
type GenerateResponse struct {
	Model     string    `json:"model"`
	Response  string    `json:"response"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// Model is one entry of GET /api/tags
type Model struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// ListModelsResponse is the body of GET /api/tags
type ListModelsResponse struct {
	Models []Model `json:"models"`
}

// PullRequest is the body of POST /api/pull
type PullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// PullResponse is a non-streaming pull response
type PullResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error body Ollama returns
type ErrorResponse struct {
	Error string `json:"error"`
}
