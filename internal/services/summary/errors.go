package summary

import (
	"errors"

	"doc-summarizer/internal/services/extract"
	"doc-summarizer/internal/services/llm"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyDocument     = errors.New("no text found in the document")
)

// Kind classifies a pipeline error.
type Kind string

const (
	KindNone              Kind = "success"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindEmptyDocument     Kind = "empty_document"
	KindExtraction        Kind = "extraction_error"
	KindProvider          Kind = "provider_error"
	KindInternal          Kind = "internal_error"
)

// Classify maps any error returned by Service.Handle to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrEmptyDocument):
		return KindEmptyDocument
	case errors.Is(err, extract.ErrExtraction):
		return KindExtraction
	case errors.Is(err, llm.ErrProvider):
		return KindProvider
	default:
		return KindInternal
	}
}
