package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/factchecker/misinfo-detector/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI API. It has no search
// grounding, so responses never carry citations.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg *config.LLMConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// SupportsWebSearch returns false.
func (p *OpenAIProvider) SupportsWebSearch() bool {
	return false
}

// Generate sends the prompt as a single user message. Image attachments are
// inlined as data URLs; other attachment types are rejected.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := req.Options.Model
	if model == "" {
		model = p.model
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.Attachment == nil {
		msg.Content = req.Prompt
	} else {
		if !strings.HasPrefix(req.Attachment.MIMEType, "image/") {
			return nil, fmt.Errorf("OpenAI provider does not accept %s attachments", req.Attachment.MIMEType)
		}
		dataURL := "data:" + req.Attachment.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Attachment.Data)
		msg.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailAuto,
			}},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    []openai.ChatCompletionMessage{msg},
		MaxTokens:   req.Options.MaxTokens,
		Temperature: float32(req.Options.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI returned no choices")
	}

	return &Response{Text: resp.Choices[0].Message.Content}, nil
}
