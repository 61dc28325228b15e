package collector

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/factchecker/misinfo-detector/internal/analysis"
	"github.com/factchecker/misinfo-detector/internal/config"
	"github.com/factchecker/misinfo-detector/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memFile struct {
	name     string
	mimeType string
	data     []byte
	size     int64
	opened   bool
	openErr  error
}

func (f *memFile) Name() string     { return f.name }
func (f *memFile) MIMEType() string { return f.mimeType }
func (f *memFile) Size() int64 {
	if f.size != 0 {
		return f.size
	}
	return int64(len(f.data))
}
func (f *memFile) Open() (io.ReadCloser, error) {
	f.opened = true
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func newCollector(max int64) *Collector {
	return New(&config.AnalysisConfig{MaxUploadBytes: max, DefaultLanguage: "English"})
}

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrInvalidInput), "expected invalid input, got %v", err)
}

func TestFromText(t *testing.T) {
	c := newCollector(0)

	sub, err := c.FromText("The moon is made of cheese", "")
	require.NoError(t, err)
	assert.Equal(t, models.InputKindText, sub.Input.Kind)
	assert.Equal(t, "English", sub.Language)

	_, err = c.FromText("   \n", "")
	assertInvalid(t, err)
}

func TestFromText_Language(t *testing.T) {
	c := newCollector(0)

	sub, err := c.FromText("hola", "spanish")
	require.NoError(t, err)
	assert.Equal(t, "Spanish", sub.Language)

	_, err = c.FromText("hola", "Klingon")
	assertInvalid(t, err)
}

func TestFromURL(t *testing.T) {
	c := newCollector(0)

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "https://example.com/a?b=c", want: "https://example.com/a?b=c"},
		{raw: "  example.com/news ", want: "https://example.com/news"},
		{raw: "http://example.com", want: "http://example.com"},
		{raw: "", wantErr: true},
		{raw: "ftp://example.com/file", wantErr: true},
		{raw: "https://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sub, err := c.FromURL(tt.raw, "")
			if tt.wantErr {
				assertInvalid(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.InputKindURL, sub.Input.Kind)
			assert.Equal(t, tt.want, sub.Input.Value)
		})
	}
}

func TestFromFile_Image(t *testing.T) {
	c := newCollector(1024)
	f := &memFile{name: "photo.png", mimeType: "image/png", data: pngHeader}

	sub, err := c.FromFile(f, "  posted on social media ", "French")
	require.NoError(t, err)
	assert.Equal(t, models.InputKindMedia, sub.Input.Kind)
	assert.Equal(t, "image/png", sub.Input.MIMEType)
	assert.Equal(t, pngHeader, sub.Input.Payload)
	assert.Equal(t, "posted on social media", sub.Input.Caption)
	assert.Equal(t, "French", sub.Language)
}

func TestFromFile_SniffsMissingType(t *testing.T) {
	c := newCollector(1024)

	sub, err := c.FromFile(&memFile{name: "doc", data: []byte("%PDF-1.7\n...")}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", sub.Input.MIMEType)

	sub, err = c.FromFile(&memFile{name: "blob", mimeType: "application/octet-stream", data: pngHeader}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", sub.Input.MIMEType)
}

func TestFromFile_OversizeRejectedBeforeOpen(t *testing.T) {
	c := newCollector(config.DefaultMaxUploadBytes)
	f := &memFile{name: "big.png", mimeType: "image/png", data: pngHeader, size: config.DefaultMaxUploadBytes + 1}

	_, err := c.FromFile(f, "", "")
	assertInvalid(t, err)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.False(t, f.opened)
	assert.Contains(t, analysis.UserMessage(err), "4 MB")
}

func TestFromFile_OversizeContentWithUnderstatedSize(t *testing.T) {
	c := newCollector(8)
	f := &memFile{name: "x.png", mimeType: "image/png", data: bytes.Repeat([]byte{1}, 9), size: 4}

	_, err := c.FromFile(f, "", "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFromFile_ExactlyAtCeiling(t *testing.T) {
	c := newCollector(int64(len(pngHeader)))

	_, err := c.FromFile(&memFile{name: "x.png", mimeType: "image/png", data: pngHeader}, "", "")
	assert.NoError(t, err)
}

func TestFromFile_Rejections(t *testing.T) {
	c := newCollector(1024)

	_, err := c.FromFile(nil, "", "")
	assertInvalid(t, err)

	_, err = c.FromFile(&memFile{name: "empty.png", mimeType: "image/png"}, "", "")
	assertInvalid(t, err)

	_, err = c.FromFile(&memFile{name: "notes.txt", mimeType: "text/plain", data: []byte("hello")}, "", "")
	assertInvalid(t, err)
	assert.Contains(t, analysis.UserMessage(err), "text/plain")

	_, err = c.FromFile(&memFile{name: "x.png", openErr: errors.New("gone")}, "", "")
	assertInvalid(t, err)
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	require.NotEmpty(t, langs)
	assert.Contains(t, langs, "English")
	assert.Contains(t, langs, "Chinese (Traditional)")
	for i := 1; i < len(langs); i++ {
		assert.True(t, strings.Compare(langs[i-1], langs[i]) < 0, "%s before %s", langs[i-1], langs[i])
	}

	langs[0] = "mutated"
	assert.NotEqual(t, "mutated", Languages()[0])
}

func TestNew_FallsBackToEnglish(t *testing.T) {
	c := New(&config.AnalysisConfig{DefaultLanguage: "Elvish"})
	assert.Equal(t, "English", c.defaultLanguage)
	assert.Equal(t, int64(config.DefaultMaxUploadBytes), c.MaxBytes())
}
