package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/factchecker/misinfo-detector/internal/llm"
	"github.com/factchecker/misinfo-detector/internal/models"
	"github.com/rs/zerolog/log"
)

type rawTechnique struct {
	Name        string `json:"technique_name"`
	Explanation string `json:"explanation"`
	RiskLevel   string `json:"risk_level"`
}

type rawCorrection struct {
	Text    string          `json:"text"`
	Sources []models.Source `json:"sources"`
}

type rawReport struct {
	RiskLevel          string          `json:"risk_level"`
	CredibilityScore   json.RawMessage `json:"credibility_score"`
	Summary            string          `json:"summary"`
	Classification     string          `json:"classification"`
	DetectedTechniques []rawTechnique  `json:"detected_techniques"`
	Correction         *rawCorrection  `json:"corrected_information"`
}

// ExtractJSON returns the text between the first '{' and the last '}'.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return "", errors.New("the model did not return JSON")
	}
	return text[start : end+1], nil
}

// ParseReport extracts, decodes and normalizes the report in the model's
// text. All failures are MalformedResponse errors.
func ParseReport(text string) (*models.AnalysisReport, error) {
	block, err := ExtractJSON(strings.TrimSpace(text))
	if err != nil {
		return nil, malformed(err)
	}

	var raw rawReport
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil, malformed(fmt.Errorf("invalid format: %w", err))
	}

	score, err := parseScore(raw.CredibilityScore)
	if err != nil {
		return nil, malformed(err)
	}

	report := &models.AnalysisReport{
		RiskLevel:          riskLevel(raw.RiskLevel, "risk_level"),
		CredibilityScore:   ClampScore(score),
		Summary:            raw.Summary,
		Classification:     raw.Classification,
		DetectedTechniques: make([]models.TechniqueFinding, 0, len(raw.DetectedTechniques)),
	}

	for _, t := range raw.DetectedTechniques {
		report.DetectedTechniques = append(report.DetectedTechniques, models.TechniqueFinding{
			Name:        t.Name,
			Explanation: t.Explanation,
			RiskLevel:   riskLevel(t.RiskLevel, "detected_techniques.risk_level"),
		})
	}

	if c := raw.Correction; c != nil && (strings.TrimSpace(c.Text) != "" || len(c.Sources) > 0) {
		report.Correction = &models.Correction{
			Text:    c.Text,
			Sources: DedupeSources(c.Sources),
		}
	}

	return report, nil
}

// ClampScore bounds a score to [0,100] and rounds it to an integer.
func ClampScore(score float64) int {
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func parseScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("credibility_score is missing")
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("credibility_score is not a number: %s", string(raw))
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("credibility_score is not a number: %s", string(raw))
		}
	}
	// ParseFloat accepts "NaN" and "Inf", which have no place on the scale.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("credibility_score is not finite: %s", string(raw))
	}
	return f, nil
}

func riskLevel(s, field string) models.RiskLevel {
	level, ok := models.ParseRiskLevel(s)
	if !ok {
		log.Warn().Str("field", field).Str("value", s).Msg("Unrecognized risk level, using Unknown")
	}
	return level
}

// SourcesFromCitations maps grounding citations to sources, dropping
// entries without a URI and defaulting titles to the URI.
func SourcesFromCitations(citations []llm.Citation) []models.Source {
	sources := make([]models.Source, 0, len(citations))
	for _, c := range citations {
		sources = append(sources, models.Source{URI: c.URI, Title: c.Title})
	}
	return DedupeSources(sources)
}

// DedupeSources drops sources with no URI, fills missing titles, and keeps
// the first occurrence of each URI in order.
func DedupeSources(sources []models.Source) []models.Source {
	seen := make(map[string]bool, len(sources))
	out := make([]models.Source, 0, len(sources))
	for _, s := range sources {
		uri := strings.TrimSpace(s.URI)
		if uri == "" || seen[uri] {
			continue
		}
		seen[uri] = true
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = uri
		}
		out = append(out, models.Source{URI: uri, Title: title})
	}
	return out
}
