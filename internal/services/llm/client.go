package llm

import (
	"context"
	"errors"
	"fmt"

	"doc-summarizer/internal/config"
)

// Instruction is the fixed prompt sent with every document.
const Instruction = "Summarize this text concisely."

// ErrProvider marks any failure of the remote summarization call.
var ErrProvider = errors.New("provider error")

// Summarizer sends text to an LLM provider and returns its summary.
// Implementations capture their credentials and model at construction and are
// safe for concurrent use.
type Summarizer interface {
	// Summarize returns the provider's trimmed answer for text.
	Summarize(ctx context.Context, text string) (string, error)

	// Name identifies the provider binding, e.g. "openai-chat".
	Name() string

	// Model is the remote model identifier in use.
	Model() string
}

// ProviderError wraps a provider failure. Its message is the underlying
// error's message, unchanged.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Provider + ": unknown error"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func newProviderError(provider string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// Options are the generation settings shared by every binding.
type Options struct {
	Temperature float64
	MaxTokens   int64
}

// New builds the Summarizer selected by cfg.Provider.
func New(cfg config.LLMConfig) (Summarizer, error) {
	opts := Options{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	var (
		s   Summarizer
		err error
	)
	switch cfg.Provider {
	case config.ProviderOpenAIChat:
		s, err = NewOpenAIChatClient(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL, opts)
	case config.ProviderOpenAICompletion:
		s, err = NewOpenAICompletionClient(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL, opts)
	case config.ProviderGemini:
		s, err = NewGeminiClient(cfg.GeminiAPIKey, cfg.Model, cfg.GeminiBaseURL, opts)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// completionPrompt is the single-string prompt used by the non-chat bindings.
func completionPrompt(text string) string {
	return Instruction + "\n\n" + text
}
