package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-summarizer/internal/metrics"
	"doc-summarizer/internal/middleware"
	"doc-summarizer/internal/services/extract"
	"doc-summarizer/internal/services/llm"
	"doc-summarizer/internal/services/summary"
)

type stubSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.summary, s.err
}

func (s *stubSummarizer) Name() string  { return "stub" }
func (s *stubSummarizer) Model() string { return "stub-1" }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(provider llm.Summarizer, maxUpload int64) *Router {
	svc := summary.NewService(extract.NewExtractor(), provider)
	router := NewRouter(RouterOptions{})
	router.RegisterSummaryRoutes(NewSummaryHandler(svc, maxUpload))
	return router
}

func uploadRequest(t *testing.T, path, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) summary.ErrorResponse {
	t.Helper()
	var body summary.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSummarizePlainText(t *testing.T) {
	provider := &stubSummarizer{summary: "A greeting."}
	router := newTestRouter(provider, 1<<20)

	for _, path := range []string{"/summarize/", "/api/v1/summarize"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, uploadRequest(t, path, "hello.txt", "text/plain", []byte("Hello world.")))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"filename":"hello.txt","summary":"A greeting."}`, rec.Body.String())
		})
	}
}

func TestSummarizeUnsupportedFormat(t *testing.T) {
	provider := &stubSummarizer{summary: "never"}
	router := newTestRouter(provider, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/summarize/", "image.png", "image/png", []byte{0x89, 'P', 'N', 'G'}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Unsupported file format. Use PDF or TXT.", body.Detail)
	assert.Equal(t, summary.ErrCodeUnsupportedFormat, body.Code)
	assert.Zero(t, provider.calls)
}

func TestSummarizeEmptyDocument(t *testing.T) {
	provider := &stubSummarizer{summary: "never"}
	router := newTestRouter(provider, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/summarize/", "blank.txt", "text/plain", []byte("  \n ")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "No text found in the document.", body.Detail)
	assert.Equal(t, summary.ErrCodeEmptyDocument, body.Code)
	assert.Zero(t, provider.calls)
}

func TestSummarizeCorruptPDF(t *testing.T) {
	provider := &stubSummarizer{summary: "never"}
	router := newTestRouter(provider, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/summarize/", "broken.pdf", "application/pdf", []byte("not a pdf at all")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, summary.ErrCodeExtraction, body.Code)
	assert.NotEmpty(t, body.Detail)
	assert.Zero(t, provider.calls)
}

func TestSummarizeProviderFailure(t *testing.T) {
	provider := &stubSummarizer{err: errors.New("simulated network failure")}
	router := newTestRouter(provider, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/summarize/", "hello.txt", "text/plain", []byte("Hello world.")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "simulated network failure", body.Detail)
	assert.Equal(t, summary.ErrCodeProvider, body.Code)
}

func TestSummarizeRequestErrors(t *testing.T) {
	router := newTestRouter(&stubSummarizer{summary: "never"}, 16)

	t.Run("oversize file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, uploadRequest(t, "/summarize/", "big.txt", "text/plain", bytes.Repeat([]byte("a"), 64)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, summary.ErrCodeTooLarge, decodeError(t, rec).Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/summarize/", strings.NewReader(`{"file":"x"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, summary.ErrCodeBadRequest, decodeError(t, rec).Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("other", "value"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/summarize/", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing file field.", decodeError(t, rec).Detail)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summarize/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
		detail string
	}{
		{summary.ErrUnsupportedFormat, 400, summary.ErrCodeUnsupportedFormat, "Unsupported file format. Use PDF or TXT."},
		{summary.ErrEmptyDocument, 400, summary.ErrCodeEmptyDocument, "No text found in the document."},
		{fmt.Errorf("%w: open pdf: bad xref", extract.ErrExtraction), 500, summary.ErrCodeExtraction, "extraction failed: open pdf: bad xref"},
		{&llm.ProviderError{Provider: "openai", Err: errors.New("rate limited")}, 500, summary.ErrCodeProvider, "rate limited"},
		{context.Canceled, 500, summary.ErrCodeInternal, "context canceled"},
	}

	for _, tt := range tests {
		status, code, detail := errorStatus(tt.err)
		assert.Equal(t, tt.status, status)
		assert.Equal(t, tt.code, code)
		assert.Equal(t, tt.detail, detail)
	}
}

func TestHealthRoutes(t *testing.T) {
	router := NewRouter(RouterOptions{})
	router.RegisterHealthRoutes(map[string]Pinger{"redis": stubPinger{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	router := NewRouter(RouterOptions{})
	router.RegisterHealthRoutes(map[string]Pinger{"redis": stubPinger{err: errors.New("connection refused")}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unavailable"`)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New()
	m.RecordDocument("success")

	router := NewRouter(RouterOptions{})
	router.RegisterMetricsRoutes(m.Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docsummarizer_documents_total")
}

func TestRateLimitedRouter(t *testing.T) {
	svc := summary.NewService(extract.NewExtractor(), &stubSummarizer{summary: "ok"})
	router := NewRouter(RouterOptions{RateLimiter: middleware.NewRateLimiter(1, 1)})
	router.RegisterSummaryRoutes(NewSummaryHandler(svc, 1<<20))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/summarize/", "a.txt", "text/plain", []byte("text")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/summarize/", "a.txt", "text/plain", []byte("text")))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
