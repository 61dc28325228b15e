package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/factchecker/misinfo-detector/internal/config"
	"github.com/factchecker/misinfo-detector/internal/fetch"
	"github.com/factchecker/misinfo-detector/internal/llm"
	"github.com/factchecker/misinfo-detector/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultLanguage is used when the caller does not name one.
const DefaultLanguage = "English"

// PageFetcher retrieves page text for providers without web search.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*fetch.Page, error)
}

// Analyzer sends one request per analysis to the provider and validates
// the answer. It holds no per-request state.
type Analyzer struct {
	provider  llm.Provider
	fetcher   PageFetcher
	webSearch bool
	fast      bool
	timeout   time.Duration
}

// NewAnalyzer creates an analyzer. fetcher may be nil.
func NewAnalyzer(cfg *config.LLMConfig, provider llm.Provider, fetcher PageFetcher) *Analyzer {
	webSearch := cfg.WebSearch && provider.SupportsWebSearch()
	if cfg.WebSearch && !webSearch {
		log.Warn().Str("provider", provider.Name()).Msg("Provider has no web search; answers will not be grounded")
	}
	return &Analyzer{
		provider:  provider,
		fetcher:   fetcher,
		webSearch: webSearch,
		fast:      cfg.FastMode,
		timeout:   cfg.Timeout,
	}
}

// Analyze runs a single analysis round trip. Every failure is an *Error.
func (a *Analyzer) Analyze(ctx context.Context, input models.AnalysisInput, outputLanguage string) (*models.FullAnalysis, error) {
	start := time.Now()

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(outputLanguage) == "" {
		outputLanguage = DefaultLanguage
	}

	prompt, err := BuildPrompt(input, outputLanguage, a.webSearch)
	if err != nil {
		return nil, InvalidInput("Invalid input type for analysis.")
	}

	if input.Kind == models.InputKindURL && !a.webSearch && a.fetcher != nil {
		prompt += a.pageContext(ctx, input.Value)
	}

	req := llm.Request{
		Prompt:    prompt,
		WebSearch: a.webSearch,
		Fast:      a.fast,
		Options:   llm.DefaultCompletionOptions(),
	}
	if input.Kind == models.InputKindMedia {
		req.Attachment = &llm.Attachment{Data: input.Payload, MIMEType: input.MIMEType}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.provider.Generate(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("provider", a.provider.Name()).Msg("Provider request failed")
		return nil, unavailable(err)
	}

	report, err := ParseReport(resp.Text)
	if err != nil {
		log.Error().Err(err).Int("response_chars", len(resp.Text)).Msg("Could not parse model response")
		return nil, err
	}

	result := &models.FullAnalysis{
		Report:  *report,
		Sources: SourcesFromCitations(resp.Citations),
	}

	log.Info().
		Str("kind", string(input.Kind)).
		Str("language", outputLanguage).
		Str("risk_level", string(report.RiskLevel)).
		Int("score", report.CredibilityScore).
		Int("sources", len(result.Sources)).
		Dur("duration", time.Since(start)).
		Msg("Analysis complete")

	return result, nil
}

func validateInput(input models.AnalysisInput) error {
	switch input.Kind {
	case models.InputKindText:
		if strings.TrimSpace(input.Value) == "" {
			return InvalidInput("Please enter some text to analyze.")
		}
	case models.InputKindURL:
		if strings.TrimSpace(input.Value) == "" {
			return InvalidInput("Please enter a URL to analyze.")
		}
	case models.InputKindMedia:
		if len(input.Payload) == 0 {
			return InvalidInput("Please select a file to analyze.")
		}
		if input.MIMEType == "" {
			return InvalidInput("The selected file has no recognizable type.")
		}
	default:
		return InvalidInput("Invalid input type for analysis.")
	}
	return nil
}

func (a *Analyzer) pageContext(ctx context.Context, pageURL string) string {
	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("Page fetch failed, analyzing URL only")
		return "\n\nThe page content could not be retrieved. Analyze the URL itself."
	}
	var sb strings.Builder
	sb.WriteString("\n\nWebpage content (retrieved for you):\n---\n")
	if page.Title != "" {
		sb.WriteString("Title: ")
		sb.WriteString(page.Title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(page.Text)
	sb.WriteString("\n---")
	return sb.String()
}
