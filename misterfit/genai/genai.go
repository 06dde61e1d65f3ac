// Package genai wraps the text generation providers used for workout and
// diet suggestions.
package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Generator produces a single completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Provider     string `env:"GENAI_PROVIDER" envDefault:"gemini"`
	GeminiApiKey string `env:"GEMINI_API_KEY"`
	OpenAIApiKey string `env:"OPENAI_API_KEY"`
	Model        string `env:"GENAI_MODEL"`
}

func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing genai env vars: %w", err)
	}
	return cfg, nil
}

// NewGeneratorFunc is the type for the provider factory function. The
// factory is a package variable so tests can swap in a mock provider.
type NewGeneratorFunc func(cfg Config) (Generator, error)

var NewGenerator NewGeneratorFunc = func(cfg Config) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		if cfg.GeminiApiKey == "" {
			return nil, fmt.Errorf("API key required for Gemini")
		}
		return NewGeminiGenerator(cfg.GeminiApiKey, cfg.Model), nil
	case "openai":
		if cfg.OpenAIApiKey == "" {
			return nil, fmt.Errorf("API key required for OpenAI")
		}
		return NewOpenAIGenerator(cfg.OpenAIApiKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// DefaultHTTPClient returns an http.Client with sensible defaults for connection pooling
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
