// Package api provides HTTP API handlers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/factchecker/misinfo-detector/internal/analysis"
	"github.com/factchecker/misinfo-detector/internal/collector"
	"github.com/factchecker/misinfo-detector/internal/database"
	"github.com/factchecker/misinfo-detector/internal/models"
	"github.com/factchecker/misinfo-detector/internal/settings"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Multipart bodies may exceed the file ceiling by this much to leave room
// for boundaries, the caption and the language field.
const multipartOverhead = 1 << 20

// Analyzer runs one analysis round trip.
type Analyzer interface {
	Analyze(ctx context.Context, input models.AnalysisInput, outputLanguage string) (*models.FullAnalysis, error)
}

// SettingsService reads and writes UI preferences.
type SettingsService interface {
	settings.Store
	All(ctx context.Context) (map[string]string, error)
}

// Handler contains all HTTP handlers.
type Handler struct {
	analyzer  Analyzer
	collector *collector.Collector
	settings  SettingsService
	store     database.Store
	provider  string
}

// NewHandler creates a new handler.
func NewHandler(analyzer Analyzer, c *collector.Collector, s SettingsService, store database.Store, provider string) *Handler {
	return &Handler{
		analyzer:  analyzer,
		collector: c,
		settings:  s,
		store:     store,
		provider:  provider,
	}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"version":   "1.0.0",
		"provider":  h.provider,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// Analyze accepts a JSON body for text and url input, or a multipart form
// with a file for media input.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var (
		sub *collector.Submission
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		sub, err = h.collectMultipart(w, r)
	} else {
		sub, err = h.collectJSON(w, r)
	}
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), sub.Input, sub.Language)
	if err != nil {
		log.Error().Err(err).
			Str("request_id", getRequestID(r.Context())).
			Str("kind", string(sub.Input.Kind)).
			Msg("Analysis failed")
		writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) collectJSON(w http.ResponseWriter, r *http.Request) (*collector.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.collector.MaxBytes())

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, analysis.InvalidInput("Request body is too large.")
		}
		return nil, analysis.InvalidInput("Invalid request body")
	}

	switch models.InputKind(req.Type) {
	case models.InputKindText:
		return h.collector.FromText(req.Value, req.Language)
	case models.InputKindURL:
		return h.collector.FromURL(req.Value, req.Language)
	case models.InputKindMedia:
		return nil, analysis.InvalidInput("Files must be uploaded as multipart/form-data.")
	}
	return nil, analysis.InvalidInput("Invalid input type for analysis.")
}

func (h *Handler) collectMultipart(w http.ResponseWriter, r *http.Request) (*collector.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.collector.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(h.collector.MaxBytes() + multipartOverhead); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, h.collector.TooLarge()
		}
		return nil, analysis.InvalidInput("Invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	var src collector.FileSource
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		src = uploadedFile{files[0]}
	}
	return h.collector.FromFile(src, r.FormValue("caption"), r.FormValue("language"))
}

// Languages returns the selectable report languages.
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages": collector.Languages(),
		"default":   h.collector.DefaultLanguage(),
	})
}

// ListSettings returns every setting with defaults applied.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.All(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list settings")
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// GetSetting returns a single setting.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.settings.Get(r.Context(), key)
	if err != nil {
		writeSettingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// PutSetting updates a single setting.
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.settings.Set(r.Context(), key, req.Value); err != nil {
		writeSettingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

// GetAuditLogs returns paginated audit logs.
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	logs, err := h.store.GetAuditLogs(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get audit logs")
		writeError(w, http.StatusInternalServerError, "Failed to get audit logs")
		return
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}

// uploadedFile adapts a multipart upload to collector.FileSource.
type uploadedFile struct {
	fh *multipart.FileHeader
}

func (f uploadedFile) Name() string     { return f.fh.Filename }
func (f uploadedFile) MIMEType() string { return f.fh.Header.Get("Content-Type") }
func (f uploadedFile) Size() int64      { return f.fh.Size }

func (f uploadedFile) Open() (io.ReadCloser, error) {
	return f.fh.Open()
}

// statusFor maps analysis failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, analysis.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, analysis.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	kind := "unknown"
	var ae *analysis.Error
	if errors.As(err, &ae) {
		kind = ae.Kind.String()
	}
	writeJSON(w, statusFor(err), map[string]string{
		"error": analysis.UserMessage(err),
		"kind":  kind,
	})
}

func writeSettingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrUnknownKey):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, settings.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("Settings operation failed")
		writeError(w, http.StatusInternalServerError, "Failed to access settings")
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
