package extract

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// Media types the extractor knows how to read.
const (
	MediaTypePDF         = "application/pdf"
	MediaTypeText        = "text/plain"
	MediaTypeOctetStream = "application/octet-stream"
)

// ErrExtraction marks documents that could not be parsed or decoded.
var ErrExtraction = errors.New("extraction failed")

// MediaType normalizes a declared Content-Type header value to its
// lowercase media type, dropping parameters such as charset.
func MediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// IsPDF reports whether the media type is a paginated binary document.
func IsPDF(mediaType string) bool {
	return mediaType == MediaTypePDF
}

// IsText reports whether the media type is read as raw UTF-8 text.
func IsText(mediaType string) bool {
	return mediaType == MediaTypeText || mediaType == MediaTypeOctetStream
}

// Extractor turns raw document bytes into plain text.
type Extractor struct{}

// NewExtractor creates a new Extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text content of data. The content type is expected to
// have been validated by the caller; anything unrecognized is an extraction
// failure.
func (e *Extractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	mediaType := MediaType(contentType)

	switch {
	case IsPDF(mediaType):
		return e.extractPDF(ctx, data)
	case IsText(mediaType):
		return decodeText(data)
	default:
		return "", fmt.Errorf("%w: no extractor for %q", ErrExtraction, mediaType)
	}
}

func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: 'utf-8' codec can't decode document: invalid byte sequence", ErrExtraction)
	}
	return string(data), nil
}

// extractPDF parses the document on a worker goroutine so that a cancelled
// request does not wait for a large document to finish.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	type result struct {
		doc pdfText
		err error
	}

	done := make(chan result, 1)
	go func() {
		doc, err := readPDF(data)
		done <- result{doc: doc, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		log.Debug().
			Int("pages", res.doc.Pages).
			Int("pages_with_text", res.doc.PagesWithText).
			Msg("PDF text extracted")
		return res.doc.Text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("extract pdf: %w", ctx.Err())
	}
}
