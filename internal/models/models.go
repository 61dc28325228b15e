// Package models defines the core data structures used throughout the application.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// InputKind identifies which variant of AnalysisInput is active.
type InputKind string

const (
	InputKindText  InputKind = "text"
	InputKindURL   InputKind = "url"
	InputKindMedia InputKind = "media"
)

// RiskLevel is the severity the model assigns to content or a technique.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

// ParseRiskLevel maps a free-form model value onto the closed set of risk
// levels. Anything unrecognized becomes RiskUnknown.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	case "unknown":
		return RiskUnknown, true
	}
	return RiskUnknown, false
}

// UnmarshalJSON fails closed: unrecognized values decode to RiskUnknown.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*r = RiskUnknown
		return nil
	}
	*r, _ = ParseRiskLevel(s)
	return nil
}

// AnalysisInput is the content submitted for analysis. Exactly one variant
// is populated: Value for text and url, Payload/MIMEType/Caption for media.
type AnalysisInput struct {
	Kind     InputKind
	Value    string
	Payload  []byte
	MIMEType string
	Caption  string
}

// NewTextInput returns a text variant.
func NewTextInput(text string) AnalysisInput {
	return AnalysisInput{Kind: InputKindText, Value: text}
}

// NewURLInput returns a url variant.
func NewURLInput(u string) AnalysisInput {
	return AnalysisInput{Kind: InputKindURL, Value: u}
}

// NewMediaInput returns a media variant with an optional caption.
func NewMediaInput(payload []byte, mimeType, caption string) AnalysisInput {
	return AnalysisInput{Kind: InputKindMedia, Payload: payload, MIMEType: mimeType, Caption: caption}
}

// TechniqueFinding is a manipulative technique detected in the content.
type TechniqueFinding struct {
	Name        string    `json:"technique_name"`
	Explanation string    `json:"explanation"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// Source is a cited web page. URI is the identity key.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Correction is a factually corrected restatement with supporting sources.
type Correction struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// AnalysisReport is the model's credibility judgment.
type AnalysisReport struct {
	RiskLevel          RiskLevel          `json:"risk_level"`
	CredibilityScore   int                `json:"credibility_score"`
	Summary            string             `json:"summary"`
	Classification     string             `json:"classification"`
	DetectedTechniques []TechniqueFinding `json:"detected_techniques"`
	Correction         *Correction        `json:"corrected_information,omitempty"`
}

// FullAnalysis is the result of one analysis round trip: the report plus the
// general sources the model consulted.
type FullAnalysis struct {
	Report  AnalysisReport `json:"report"`
	Sources []Source       `json:"sources"`
}

// AnalyzeRequest is the JSON request body for text and url analysis.
type AnalyzeRequest struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Language string `json:"language,omitempty"`
}

// Setting is a persisted key/value UI preference.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditLog represents an API request audit entry.
type AuditLog struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestSize  int64     `json:"request_size"`
	ResponseCode int       `json:"response_code"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}
