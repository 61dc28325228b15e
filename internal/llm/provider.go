// Package llm provides a pluggable interface for LLM providers.
package llm

import (
	"context"
	"fmt"

	"github.com/factchecker/misinfo-detector/internal/config"
)

// CompletionOptions contains options for completion requests.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
	Model       string
}

// DefaultCompletionOptions returns sensible defaults.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		MaxTokens:   8192,
		Temperature: 0.0,
	}
}

// Attachment is a binary payload sent alongside the prompt as its own part.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// Request is a single generation request.
type Request struct {
	Prompt     string
	Attachment *Attachment

	// WebSearch asks the provider to ground the answer in live search results.
	WebSearch bool
	// Fast disables extended reasoning.
	Fast bool

	Options CompletionOptions
}

// Citation is one web source reported by the provider's grounding metadata.
type Citation struct {
	URI   string
	Title string
}

// Response is the provider's raw answer.
type Response struct {
	Text      string
	Citations []Citation
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Generate sends one request and returns the model's text and citations.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider name.
	Name() string

	// SupportsWebSearch reports whether the provider can ground answers
	// in live web results and report citations.
	SupportsWebSearch() bool
}

// NewProvider creates a new LLM provider based on configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
