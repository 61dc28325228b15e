package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullAnalysis_RoundTrip(t *testing.T) {
	original := FullAnalysis{
		Report: AnalysisReport{
			RiskLevel:        RiskHigh,
			CredibilityScore: 8,
			Summary:          "Resumen",
			Classification:   "Desinformación probable",
			DetectedTechniques: []TechniqueFinding{
				{Name: "Urgencia", Explanation: "Presiona al lector", RiskLevel: RiskMedium},
			},
			Correction: &Correction{
				Text:    "Texto corregido",
				Sources: []Source{{URI: "https://example.org/a", Title: "Original Title"}},
			},
		},
		Sources: []Source{{URI: "https://example.org/b", Title: "B"}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"corrected_information"`)
	assert.Contains(t, string(data), `"technique_name"`)

	var decoded FullAnalysis
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestAnalysisReport_OmitsAbsentCorrection(t *testing.T) {
	data, err := json.Marshal(AnalysisReport{RiskLevel: RiskLow, DetectedTechniques: []TechniqueFinding{}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "corrected_information")
}

func TestRiskLevel_UnmarshalFailsClosed(t *testing.T) {
	cases := map[string]RiskLevel{
		`"Low"`:      RiskLow,
		`"HIGH"`:     RiskHigh,
		`" medium "`: RiskMedium,
		`"Severe"`:   RiskUnknown,
		`42`:         RiskUnknown,
		`""`:         RiskUnknown,
	}
	for in, want := range cases {
		var r RiskLevel
		require.NoError(t, json.Unmarshal([]byte(in), &r), in)
		assert.Equal(t, want, r, in)
	}
}

func TestParseRiskLevel(t *testing.T) {
	level, ok := ParseRiskLevel("unknown")
	assert.True(t, ok)
	assert.Equal(t, RiskUnknown, level)

	level, ok = ParseRiskLevel("critical")
	assert.False(t, ok)
	assert.Equal(t, RiskUnknown, level)
}
