package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"doc-summarizer/internal/cache"
	"doc-summarizer/internal/metrics"
	"doc-summarizer/internal/services/extract"
	"doc-summarizer/internal/services/llm"
)

// TextExtractor turns document bytes into text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

// Cache memoizes provider answers. cache.RedisCache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service runs the validate, extract, check, summarize, assemble pipeline.
// It keeps no per-document state between calls.
type Service struct {
	extractor TextExtractor
	llm       llm.Summarizer
	cache     Cache
	cacheTTL  time.Duration
	timeout   time.Duration
	metrics   *metrics.Metrics
	inflight  singleflight.Group
}

type Option func(*Service)

// WithCache enables memoization of provider answers for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithTimeout bounds each provider call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new Service
func NewService(extractor TextExtractor, summarizer llm.Summarizer, opts ...Option) *Service {
	s := &Service{
		extractor: extractor,
		llm:       summarizer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle summarizes a single document.
func (s *Service) Handle(ctx context.Context, doc Document) (*Result, error) {
	logger := log.With().
		Str("filename", doc.Filename).
		Str("content_type", doc.ContentType).
		Int("bytes", len(doc.Data)).
		Logger()

	result, err := s.handle(ctx, doc, logger)

	kind := Classify(err)
	s.metrics.RecordDocument(string(kind))
	if err != nil {
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("Document rejected")
		return nil, err
	}

	logger.Info().Int("summary_chars", len(result.Summary)).Msg("Document summarized")
	return result, nil
}

func (s *Service) handle(ctx context.Context, doc Document, logger zerolog.Logger) (*Result, error) {
	mediaType := extract.MediaType(doc.ContentType)
	if !extract.IsPDF(mediaType) && !extract.IsText(mediaType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.ContentType)
	}

	start := time.Now()
	text, err := s.extractor.Extract(ctx, doc.Data, mediaType)
	s.metrics.ObserveStage("extract", time.Since(start))
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	logger.Debug().Int("text_chars", len(text)).Msg("Text extracted")

	summary, err := s.summarize(ctx, text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Filename: doc.Filename,
		Summary:  summary,
	}, nil
}

// summarize collapses concurrent requests for the same text onto one provider
// call. The call runs detached from any single caller so that one caller going
// away does not fail the others; each caller stops waiting when its own
// context ends.
func (s *Service) summarize(ctx context.Context, text string) (string, error) {
	key := cache.SummaryKey(s.llm.Name(), s.llm.Model(), text)

	if summary, ok := s.lookup(ctx, key); ok {
		return summary, nil
	}

	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return s.callProvider(context.WithoutCancel(ctx), key, text)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("summarize: %w", ctx.Err())
	}
}

func (s *Service) callProvider(ctx context.Context, key, text string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	summary, err := s.llm.Summarize(ctx, text)
	s.metrics.ObserveStage("summarize", time.Since(start))
	s.metrics.RecordProviderCall(s.llm.Name(), err == nil)

	if err != nil {
		if !errors.Is(err, llm.ErrProvider) {
			err = &llm.ProviderError{Provider: s.llm.Name(), Err: err}
		}
		return "", err
	}

	s.store(ctx, key, summary)
	return summary, nil
}

func (s *Service) lookup(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.RecordCacheLookup("hit")
		return string(data), true
	case errors.Is(err, cache.ErrKeyNotFound):
		s.metrics.RecordCacheLookup("miss")
	default:
		s.metrics.RecordCacheLookup("error")
		log.Warn().Err(err).Msg("Summary cache lookup failed")
	}
	return "", false
}

func (s *Service) store(ctx context.Context, key, summary string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache summary")
	}
}
