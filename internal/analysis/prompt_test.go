package analysis

import (
	"strings"
	"testing"

	"github.com/factchecker/misinfo-detector/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_LanguageDirective(t *testing.T) {
	prompt, err := BuildPrompt(models.NewTextInput("Vaccines contain microchips."), "Spanish", true)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Your response MUST be in Spanish.")
	assert.Contains(t, prompt, "must be translated into Spanish")
	assert.Contains(t, prompt, "The only exceptions are source titles and URIs, which should remain in their original form.")
}

func TestBuildPrompt_SchemaListsAllFields(t *testing.T) {
	prompt, err := BuildPrompt(models.NewTextInput("x"), "English", true)
	require.NoError(t, err)

	for _, field := range []string{
		`"risk_level"`, `"credibility_score"`, `"summary"`,
		`"classification"`, `"detected_techniques"`, `"corrected_information"`,
	} {
		assert.Contains(t, prompt, field)
	}
	assert.Contains(t, prompt, "'Low', 'Medium', 'High', or 'Unknown'")
	assert.Contains(t, prompt, `this entire "corrected_information" property must be omitted`)
}

func TestBuildPrompt_TextVariantEmbedsValue(t *testing.T) {
	prompt, err := BuildPrompt(models.NewTextInput("The earth is flat."), "English", true)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Analyze the following text")
	assert.True(t, strings.HasSuffix(prompt, "Text to analyze:\n---\nThe earth is flat.\n---"))
	assert.Contains(t, prompt, "Use Google Search")
}

func TestBuildPrompt_URLVariant(t *testing.T) {
	prompt, err := BuildPrompt(models.NewURLInput("https://news.example/story"), "English", true)
	require.NoError(t, err)

	assert.Contains(t, prompt, "webpage at the following URL")
	assert.Contains(t, prompt, "Use Google Search to access the page")
	assert.True(t, strings.HasSuffix(prompt, "Webpage URL to analyze:\n---\nhttps://news.example/story\n---"))
}

func TestBuildPrompt_MediaVariantUsesCaptionNotPayload(t *testing.T) {
	input := models.NewMediaInput([]byte("BINARYDATA"), "image/png", "Is this photo real?")
	prompt, err := BuildPrompt(input, "English", true)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Analyze the following file (image or document)")
	assert.Contains(t, prompt, "User's text prompt (use this as context):\n---\nIs this photo real?\n---")
	assert.NotContains(t, prompt, "BINARYDATA")
}

func TestBuildPrompt_MediaWithoutCaption(t *testing.T) {
	prompt, err := BuildPrompt(models.NewMediaInput([]byte{1}, "application/pdf", "   "), "English", true)
	require.NoError(t, err)
	assert.Contains(t, prompt, noCaption)
}

func TestBuildPrompt_WithoutWebSearch(t *testing.T) {
	prompt, err := BuildPrompt(models.NewURLInput("https://x.example"), "English", false)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Google Search")
}

func TestBuildPrompt_UnknownKind(t *testing.T) {
	_, err := BuildPrompt(models.AnalysisInput{Kind: "audio"}, "English", true)
	require.Error(t, err)
}
