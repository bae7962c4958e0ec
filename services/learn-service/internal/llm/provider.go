// Package llm generates structured JSON through hosted language models
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a JSON document for a prompt
type Provider interface {
	// Generate sends the request and returns JSON that satisfies req.Schema when one is set
	Generate(ctx context.Context, req Request) (*Response, error)
	// Name returns the provider name used in logs and metrics
	Name() string
	// ModelID returns the model the provider calls
	ModelID() string
}

// Request is a single-turn generation request
type Request struct {
	System      string
	Prompt      string
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Schema is the JSON Schema a response must satisfy
type Schema struct {
	// Name identifies the schema and keys the compiled schema cache
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the generated content
type Response struct {
	Content      json.RawMessage
	Model        string
	InputTokens  int
	OutputTokens int
}
