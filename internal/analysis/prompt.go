// Package analysis turns submitted content into a credibility report by
// prompting an LLM and validating what it returns.
package analysis

import (
	"fmt"
	"strings"

	"github.com/factchecker/misinfo-detector/internal/models"
)

const noCaption = "No additional context provided."

const schemaInstruction = `Based on your analysis, provide a structured response in JSON format. The response must be a single JSON object with the following properties:
1.  "risk_level": An overall risk level. This value MUST be one of the following English strings: 'Low', 'Medium', 'High', or 'Unknown'.
2.  "credibility_score": A numerical score from 0 (very untrustworthy) to 100 (very trustworthy).
3.  "summary": A brief summary of your main findings (in the language specified by the language instruction).
4.  "classification": A brief, direct classification of the content (e.g., "Likely Misinformation", "Satire", "Opinion Piece", "Factual Reporting"). This classification must be in the language specified by the language instruction.
5.  "detected_techniques": An array of objects, where each object has a "technique_name", an "explanation", and its specific "risk_level". The "technique_name" and "explanation" must be in the language specified by the language instruction. The "risk_level" value MUST be one of the following English strings: 'Low', 'Medium', 'High', or 'Unknown'.
6.  "corrected_information": If the analysis identifies factual inaccuracies (typically for 'Medium' or 'High' risk levels), provide an object with two properties:
    a. "text": A clear, concise, and factually correct version of the information (in the language specified by the language instruction).
    b. "sources": An array of source objects that directly support the corrected information. Each object must have a "uri" and a "title". The title can be in its original language.
    If the content is largely accurate or the risk is 'Low', this entire "corrected_information" property must be omitted.

Only respond with the JSON object, no other text.`

// LanguageInstruction mandates the output language for every free-text field.
func LanguageInstruction(outputLanguage string) string {
	return fmt.Sprintf("**Primary Instruction:** Your response MUST be in %[1]s. "+
		"All string values in the final JSON object (summary, classification, technique names, explanations, corrected information) must be translated into %[1]s. "+
		"The only exceptions are source titles and URIs, which should remain in their original form.", outputLanguage)
}

func taskInstruction(kind models.InputKind, webSearch bool) (string, error) {
	research := "Use Google Search to find relevant, up-to-date information to support your analysis."
	if !webSearch {
		research = "Base your analysis on your own knowledge and any page content provided below, and say so where a claim cannot be verified."
	}
	switch kind {
	case models.InputKindText:
		return "Analyze the following text for signs of misinformation, fake news, scams, or manipulative techniques. " +
			"Your goal is to assess its credibility and educate the user. " + research, nil
	case models.InputKindURL:
		if webSearch {
			research = "Use Google Search to access the page and find relevant, up-to-date information to support your analysis."
		}
		return "Analyze the content of the webpage at the following URL for signs of misinformation, fake news, scams, or manipulative techniques. " +
			"Your goal is to assess its credibility and educate the user. " + research, nil
	case models.InputKindMedia:
		return "Analyze the following file (image or document) and the associated text prompt for signs of misinformation, fake news, scams, or manipulative techniques. " +
			"Your goal is to assess its credibility and educate the user. " + research, nil
	}
	return "", fmt.Errorf("unrecognized input kind %q", kind)
}

// BuildPrompt assembles the instruction text for input. For text and url the
// literal value is embedded; for media the caption is embedded and the
// payload travels separately as an attachment.
func BuildPrompt(input models.AnalysisInput, outputLanguage string, webSearch bool) (string, error) {
	task, err := taskInstruction(input.Kind, webSearch)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(LanguageInstruction(outputLanguage))
	sb.WriteString("\n\n")
	sb.WriteString(task)
	sb.WriteString("\n\n")
	sb.WriteString(schemaInstruction)

	switch input.Kind {
	case models.InputKindText:
		writeBlock(&sb, "Text to analyze:", input.Value)
	case models.InputKindURL:
		writeBlock(&sb, "Webpage URL to analyze:", input.Value)
	case models.InputKindMedia:
		caption := strings.TrimSpace(input.Caption)
		if caption == "" {
			caption = noCaption
		}
		writeBlock(&sb, "User's text prompt (use this as context):", caption)
	}

	return sb.String(), nil
}

func writeBlock(sb *strings.Builder, label, body string) {
	sb.WriteString("\n\n")
	sb.WriteString(label)
	sb.WriteString("\n---\n")
	sb.WriteString(body)
	sb.WriteString("\n---")
}
