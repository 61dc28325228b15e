package collector

import (
	"sort"
	"strings"
)

var languages = []string{
	"Afrikaans", "Albanian", "Amharic", "Arabic", "Armenian", "Azerbaijani",
	"Basque", "Belarusian", "Bengali", "Bosnian", "Bulgarian", "Catalan",
	"Cebuano", "Chinese (Simplified)", "Chinese (Traditional)", "Corsican",
	"Croatian", "Czech", "Danish", "Dutch", "English", "Esperanto", "Estonian",
	"Filipino", "Finnish", "French", "Frisian", "Galician", "Georgian",
	"German", "Greek", "Gujarati", "Haitian Creole", "Hausa", "Hawaiian",
	"Hebrew", "Hindi", "Hmong", "Hungarian", "Icelandic", "Igbo", "Indonesian",
	"Irish", "Italian", "Japanese", "Javanese", "Kannada", "Kazakh", "Khmer",
	"Korean", "Kurdish", "Kyrgyz", "Lao", "Latin", "Latvian", "Lithuanian",
	"Luxembourgish", "Macedonian", "Malagasy", "Malay", "Malayalam", "Maltese",
	"Maori", "Marathi", "Mongolian", "Myanmar (Burmese)", "Nepali", "Norwegian",
	"Pashto", "Persian", "Polish", "Portuguese", "Punjabi", "Romanian",
	"Russian", "Samoan", "Scots Gaelic", "Serbian", "Sesotho", "Shona",
	"Sindhi", "Sinhala", "Slovak", "Slovenian", "Somali", "Spanish",
	"Sundanese", "Swahili", "Swedish", "Tajik", "Tamil", "Telugu", "Thai",
	"Turkish", "Ukrainian", "Urdu", "Uzbek", "Vietnamese", "Welsh", "Xhosa",
	"Yiddish", "Yoruba", "Zulu",
}

var languageIndex = func() map[string]string {
	sort.Strings(languages)
	idx := make(map[string]string, len(languages))
	for _, l := range languages {
		idx[strings.ToLower(l)] = l
	}
	return idx
}()

// Languages returns the supported report languages, sorted by name.
func Languages() []string {
	out := make([]string, len(languages))
	copy(out, languages)
	return out
}

// CanonicalLanguage returns the canonical spelling of name, matched
// case-insensitively.
func CanonicalLanguage(name string) (string, bool) {
	l, ok := languageIndex[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}
