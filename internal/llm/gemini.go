package llm

import (
	"context"
	"fmt"

	"github.com/factchecker/misinfo-detector/internal/config"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the official genai client.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg *config.LLMConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// SupportsWebSearch returns true: Gemini exposes the Google Search tool and
// grounding metadata.
func (p *GeminiProvider) SupportsWebSearch() bool {
	return true
}

// Generate sends the prompt (and attachment, if any) as one user turn.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := req.Options.Model
	if model == "" {
		model = p.model
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Attachment != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Attachment.Data, req.Attachment.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	gc := &genai.GenerateContentConfig{}
	if req.Options.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.Options.MaxTokens)
	}
	if req.WebSearch {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.Fast {
		gc.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, gc)
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("Gemini returned no candidates")
	}

	return &Response{
		Text:      resp.Text(),
		Citations: geminiCitations(resp.Candidates[0].GroundingMetadata),
	}, nil
}

func geminiCitations(md *genai.GroundingMetadata) []Citation {
	if md == nil {
		return nil
	}
	citations := make([]Citation, 0, len(md.GroundingChunks))
	for _, chunk := range md.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		citations = append(citations, Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return citations
}
