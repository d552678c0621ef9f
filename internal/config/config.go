package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported values of LLM_PROVIDER.
const (
	ProviderOpenAIChat       = "openai-chat"
	ProviderOpenAICompletion = "openai-completion"
	ProviderGemini           = "gemini"
)

// ErrMissingCredential is returned by Load when the selected provider has no API key.
var ErrMissingCredential = errors.New("provider API key is required")

type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Redis   RedisConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port           string        `env:"PORT"                 envDefault:"8000"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT"         envDefault:"30s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT"        envDefault:"120s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT"         envDefault:"60s"`
	MaxUploadMB    int64         `env:"MAX_UPLOAD_MB"        envDefault:"10"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	RateLimitRPM   int           `env:"RATE_LIMIT_RPM"       envDefault:"0"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST"     envDefault:"10"`
}

// LLMConfig selects the single provider binding active for the process.
type LLMConfig struct {
	Provider      string        `env:"LLM_PROVIDER"    envDefault:"openai-chat"`
	Model         string        `env:"LLM_MODEL"`
	Timeout       time.Duration `env:"LLM_TIMEOUT"     envDefault:"60s"`
	Temperature   float64       `env:"LLM_TEMPERATURE" envDefault:"0.5"`
	MaxTokens     int64         `env:"LLM_MAX_TOKENS"  envDefault:"300"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL"`
}

// RedisConfig configures the optional summary cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB"          envDefault:"0"`
	TTL      time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"24h"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that exactly one usable provider binding is configured.
func (c *Config) Validate() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))

	switch c.LLM.Provider {
	case ProviderOpenAIChat, ProviderOpenAICompletion:
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY: %w", ErrMissingCredential)
		}
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY: %w", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.Server.MaxUploadMB)
	}

	return nil
}

// MaxUploadBytes returns the request body limit for uploads.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB * 1024 * 1024
}
