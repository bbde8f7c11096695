package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/helmcode/logai/pkg/config"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
)

// Factory creates LLM instances based on provider
type Factory struct{}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM creates an LLM instance based on provider and configuration.
// Recognised keys: api_key, model, base_url, timeout.
func (f *Factory) CreateLLM(ctx context.Context, provider Provider, cfg map[string]string) (LLM, error) {
	apiKey := cfg["api_key"]
	model := cfg["model"]
	baseURL := cfg["base_url"]

	var timeout time.Duration
	if v := cfg["timeout"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
		}
		timeout = d
	}

	switch provider {
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY)")
		}
		opts := GeminiOptions{Model: model, BaseURL: baseURL}
		if timeout > 0 {
			opts.HTTPClient = &http.Client{Timeout: timeout}
		}
		return NewGemini(ctx, apiKey, opts)

	case ProviderClaude:
		if apiKey == "" {
			return nil, fmt.Errorf("Claude API key is required (set ANTHROPIC_API_KEY)")
		}
		if model == "" {
			model = defaultClaudeModel
		}
		return NewClaudeWithModel(apiKey, model).WithBaseURL(baseURL).WithTimeout(timeout), nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
		}
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIWithModel(apiKey, model).WithBaseURL(baseURL).WithTimeout(timeout), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateFromConfig creates an LLM instance from loaded settings.
func (f *Factory) CreateFromConfig(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	settings := map[string]string{
		"api_key":  cfg.APIKey,
		"model":    cfg.Model,
		"base_url": cfg.BaseURL,
	}
	if cfg.Timeout > 0 {
		settings["timeout"] = cfg.Timeout.String()
	}
	return f.CreateLLM(ctx, Provider(strings.ToLower(cfg.Provider)), settings)
}

// CreateFromEnv creates an LLM instance using only environment variables.
func (f *Factory) CreateFromEnv(ctx context.Context, provider, model string) (LLM, error) {
	return f.CreateFromConfig(ctx, config.LLMFromEnv(provider, model))
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderGemini, ProviderClaude, ProviderOpenAI}
}
