package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

const (
	defaultChatModel       = "gpt-4-turbo"
	defaultCompletionModel = "gpt-3.5-turbo-instruct"
)

// newOpenAIClient builds an SDK client that never retries on its own.
func newOpenAIClient(apiKey, baseURL string) (openai.Client, error) {
	if apiKey == "" {
		return openai.Client{}, fmt.Errorf("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return openai.NewClient(opts...), nil
}

// OpenAIChatClient summarizes with the Chat Completions API.
type OpenAIChatClient struct {
	client openai.Client
	model  string
	opts   Options
}

func NewOpenAIChatClient(apiKey, model, baseURL string, opts Options) (*OpenAIChatClient, error) {
	client, err := newOpenAIClient(apiKey, baseURL)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = defaultChatModel
	}

	return &OpenAIChatClient{
		client: client,
		model:  model,
		opts:   opts,
	}, nil
}

func (c *OpenAIChatClient) Name() string  { return "openai-chat" }
func (c *OpenAIChatClient) Model() string { return c.model }

func (c *OpenAIChatClient) Summarize(ctx context.Context, text string) (string, error) {
	log.Debug().Str("model", c.model).Int("chars", len(text)).Msg("Requesting chat completion")

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(Instruction),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(c.opts.MaxTokens),
	})
	if err != nil {
		return "", newProviderError(c.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return "", newProviderError(c.Name(), errors.New("chat completion choices are missing"))
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", newProviderError(c.Name(), errors.New("chat completion choice message content is missing"))
	}

	return summary, nil
}

// OpenAICompletionClient summarizes with the legacy Completions API.
type OpenAICompletionClient struct {
	client openai.Client
	model  string
	opts   Options
}

func NewOpenAICompletionClient(apiKey, model, baseURL string, opts Options) (*OpenAICompletionClient, error) {
	client, err := newOpenAIClient(apiKey, baseURL)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = defaultCompletionModel
	}

	return &OpenAICompletionClient{
		client: client,
		model:  model,
		opts:   opts,
	}, nil
}

func (c *OpenAICompletionClient) Name() string  { return "openai-completion" }
func (c *OpenAICompletionClient) Model() string { return c.model }

func (c *OpenAICompletionClient) Summarize(ctx context.Context, text string) (string, error) {
	log.Debug().Str("model", c.model).Int("chars", len(text)).Msg("Requesting completion")

	resp, err := c.client.Completions.New(ctx, openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(c.model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(completionPrompt(text)),
		},
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(c.opts.MaxTokens),
	})
	if err != nil {
		return "", newProviderError(c.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return "", newProviderError(c.Name(), errors.New("completion choices are missing"))
	}

	summary := strings.TrimSpace(resp.Choices[0].Text)
	if summary == "" {
		return "", newProviderError(c.Name(), errors.New("completion choice text is missing"))
	}

	return summary, nil
}
