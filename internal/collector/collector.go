// Package collector turns raw user submissions into a single validated
// AnalysisInput and an output language.
//
// All preconditions that can be checked locally (empty values, unsupported
// languages, the media size ceiling, unsupported file types) are enforced
// here so that a rejected submission never reaches the model.
package collector

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/factchecker/misinfo-detector/internal/analysis"
	"github.com/factchecker/misinfo-detector/internal/config"
	"github.com/factchecker/misinfo-detector/internal/models"
)

// ErrFileTooLarge is wrapped by the InvalidInput error returned for media
// above the size ceiling.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// FileSource is a user-selected file. The HTTP layer adapts multipart
// uploads to it.
type FileSource interface {
	Name() string
	MIMEType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Submission is a validated analysis request.
type Submission struct {
	Input    models.AnalysisInput
	Language string
}

// Collector validates submissions.
type Collector struct {
	maxBytes        int64
	defaultLanguage string
}

// New creates a collector from the analysis config.
func New(cfg *config.AnalysisConfig) *Collector {
	max := cfg.MaxUploadBytes
	if max <= 0 {
		max = config.DefaultMaxUploadBytes
	}
	lang := cfg.DefaultLanguage
	if canon, ok := CanonicalLanguage(lang); ok {
		lang = canon
	} else {
		lang = analysis.DefaultLanguage
	}
	return &Collector{maxBytes: max, defaultLanguage: lang}
}

// MaxBytes returns the media size ceiling.
func (c *Collector) MaxBytes() int64 {
	return c.maxBytes
}

// DefaultLanguage is the language used when a submission names none.
func (c *Collector) DefaultLanguage() string {
	return c.defaultLanguage
}

// FromText builds a text submission.
func (c *Collector) FromText(text, language string) (*Submission, error) {
	lang, err := c.language(language)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, analysis.InvalidInput("Please enter some text to analyze.")
	}
	return &Submission{Input: models.NewTextInput(text), Language: lang}, nil
}

// FromURL builds a URL submission. A missing scheme defaults to https.
func (c *Collector) FromURL(raw, language string) (*Submission, error) {
	lang, err := c.language(language)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, analysis.InvalidInput("Please enter a URL to analyze.")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, analysis.InvalidInput("Please enter a valid web address (http or https).")
	}
	return &Submission{Input: models.NewURLInput(u.String()), Language: lang}, nil
}

// FromFile reads src into a media submission. The declared size is checked
// before the file is opened and the read is capped at the ceiling.
func (c *Collector) FromFile(src FileSource, caption, language string) (*Submission, error) {
	lang, err := c.language(language)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, analysis.InvalidInput("Please select a file to analyze.")
	}
	if src.Size() > c.maxBytes {
		return nil, c.TooLarge()
	}

	f, err := src.Open()
	if err != nil {
		return nil, analysis.InvalidInput("The selected file could not be read.")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, c.maxBytes+1))
	if err != nil {
		return nil, analysis.InvalidInput("The selected file could not be read.")
	}
	if int64(len(data)) > c.maxBytes {
		return nil, c.TooLarge()
	}
	if len(data) == 0 {
		return nil, analysis.InvalidInput("The selected file is empty.")
	}

	mimeType := detectMIME(src.MIMEType(), data)
	if !Accepted(mimeType) {
		return nil, analysis.InvalidInput(fmt.Sprintf("Unsupported file type %q. Please upload an image or a PDF.", mimeType))
	}

	return &Submission{
		Input:    models.NewMediaInput(data, mimeType, strings.TrimSpace(caption)),
		Language: lang,
	}, nil
}

// Accepted reports whether mimeType can be submitted for analysis.
func Accepted(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

func (c *Collector) language(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return c.defaultLanguage, nil
	}
	lang, ok := CanonicalLanguage(name)
	if !ok {
		return "", analysis.InvalidInput(fmt.Sprintf("Unsupported output language: %s", name))
	}
	return lang, nil
}

// TooLarge returns the error reported for media above the ceiling.
func (c *Collector) TooLarge() error {
	return &analysis.Error{
		Kind:    analysis.KindInvalidInput,
		Message: fmt.Sprintf("File is too large. Please select a file smaller than %s.", humanSize(c.maxBytes)),
		Err:     ErrFileTooLarge,
	}
}

// detectMIME prefers the declared type and falls back to sniffing when it
// is missing or generic.
func detectMIME(declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	sniffed := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		sniffed = mt
	}
	return sniffed
}

func humanSize(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	if n >= 1024 {
		return fmt.Sprintf("%d KB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}
