package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"doc-summarizer/internal/services/summary"
)

// uploadField is the multipart form field carrying the document.
const uploadField = "file"

// multipart overhead allowed on top of the document size limit
const formOverhead = 1 << 20

// SummaryHandler handles document upload requests
type SummaryHandler struct {
	service        *summary.Service
	maxUploadBytes int64
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(service *summary.Service, maxUploadBytes int64) *SummaryHandler {
	return &SummaryHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes registers all summarization routes
func (h *SummaryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/summarize/", h.Summarize)
	r.Post("/api/v1/summarize", h.Summarize)
}

// Summarize accepts one multipart file and returns its summary.
func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if r.ContentLength > h.maxUploadBytes+formOverhead {
		writeError(w, http.StatusRequestEntityTooLarge, summary.ErrCodeTooLarge, "Uploaded file is too large.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, summary.ErrCodeTooLarge, "Uploaded file is too large.")
			return
		}
		logger.Debug().Err(err).Msg("Invalid multipart body")
		writeError(w, http.StatusBadRequest, summary.ErrCodeBadRequest, "Request must be multipart/form-data with a file field.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, summary.ErrCodeBadRequest, "Missing file field.")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, summary.ErrCodeTooLarge, "Uploaded file is too large.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read uploaded file")
		writeError(w, http.StatusBadRequest, summary.ErrCodeBadRequest, "Could not read uploaded file.")
		return
	}

	result, err := h.service.Handle(r.Context(), summary.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		status, code, detail := errorStatus(err)
		writeError(w, status, code, detail)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// errorStatus maps a pipeline error to its HTTP status, error code and
// detail message.
func errorStatus(err error) (int, string, string) {
	switch summary.Classify(err) {
	case summary.KindUnsupportedFormat:
		return http.StatusBadRequest, summary.ErrCodeUnsupportedFormat, "Unsupported file format. Use PDF or TXT."
	case summary.KindEmptyDocument:
		return http.StatusBadRequest, summary.ErrCodeEmptyDocument, "No text found in the document."
	case summary.KindExtraction:
		return http.StatusInternalServerError, summary.ErrCodeExtraction, err.Error()
	case summary.KindProvider:
		return http.StatusInternalServerError, summary.ErrCodeProvider, err.Error()
	default:
		return http.StatusInternalServerError, summary.ErrCodeInternal, err.Error()
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, summary.NewErrorResponse(code, detail))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
