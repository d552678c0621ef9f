package ingest

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"doc-summarizer/internal/services/summary"
)

// Loader reads documents from the local filesystem and runs them through the
// summarization pipeline.
type Loader struct {
	service *summary.Service
	maxSize int64
}

// NewLoader creates a new Loader instance
func NewLoader(service *summary.Service, maxSize int64) *Loader {
	return &Loader{service: service, maxSize: maxSize}
}

// SummarizeFile loads filePath and summarizes it.
func (l *Loader) SummarizeFile(ctx context.Context, filePath string) (*summary.Result, error) {
	doc, err := LoadFromFile(filePath, l.maxSize)
	if err != nil {
		return nil, err
	}
	return l.service.Handle(ctx, doc)
}

// LoadFromFile reads a single file into a Document. The content type is taken
// from the file extension, falling back to content sniffing.
func LoadFromFile(filePath string, maxSize int64) (summary.Document, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return summary.Document{}, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}
	if info.IsDir() {
		return summary.Document{}, fmt.Errorf("%s is a directory", filePath)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return summary.Document{}, fmt.Errorf("file %s is %d bytes, limit is %d", filePath, info.Size(), maxSize)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return summary.Document{}, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return summary.Document{
		Filename:    filepath.Base(filePath),
		ContentType: DetectContentType(filePath, data),
		Data:        data,
	}, nil
}

// DetectContentType guesses the declared content type of a local file.
func DetectContentType(filePath string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".text", ".md", ".log":
		return "text/plain"
	}

	if byExt := mime.TypeByExtension(filepath.Ext(filePath)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}
