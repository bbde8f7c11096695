package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "~/.config/logai/config.yaml"

// Config is read once at startup and shared read-only afterwards.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	LogLevel string         `yaml:"log_level"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AnalysisConfig holds the chunking and sampling limits.
type AnalysisConfig struct {
	MaxCharsPerChunk    int     `yaml:"max_chars_per_chunk"`
	MinBreak            int     `yaml:"min_break"`
	MaxOutputTokens     int     `yaml:"max_output_tokens"`
	ChatMaxOutputTokens int     `yaml:"chat_max_output_tokens"`
	Temperature         float32 `yaml:"temperature"`
	MergeStrategy       string  `yaml:"merge_strategy"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	TrustProxy      bool          `yaml:"trust_proxy"`
}

// CacheConfig enables reply caching. With no Redis address an in-process
// store is used.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Timeout:  60 * time.Second,
		},
		Analysis: AnalysisConfig{
			MaxCharsPerChunk:    4000,
			MinBreak:            200,
			MaxOutputTokens:     800,
			ChatMaxOutputTokens: 500,
			Temperature:         0.1,
			MergeStrategy:       "first",
		},
		Server: ServerConfig{
			Addr:            ":8000",
			MaxUploadBytes:  10 << 20,
			RateLimit:       2,
			RateBurst:       10,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path, a
// .env file in the working directory and the environment, in that order.
// A missing file at the default path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WithLLMOverrides applies command-line provider and model choices. A new
// provider drops the key and model resolved for the old one.
func (c *Config) WithLLMOverrides(provider, model string) error {
	if provider != "" && !strings.EqualFold(provider, c.LLM.Provider) {
		c.LLM.Provider = strings.ToLower(provider)
		c.LLM.APIKey = ""
		c.LLM.Model = ""
		c.LLM.BaseURL = ""
		c.LLM.applyEnv()
	}
	if model != "" {
		c.LLM.Model = model
	}
	return c.Validate()
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "gemini", "claude", "openai":
	default:
		return fmt.Errorf("unsupported LLM provider: %s (supported: gemini, claude, openai)", c.LLM.Provider)
	}
	if c.Analysis.MaxCharsPerChunk <= 0 {
		return fmt.Errorf("analysis.max_chars_per_chunk must be positive, got %d", c.Analysis.MaxCharsPerChunk)
	}
	if c.Analysis.MinBreak < 0 {
		return fmt.Errorf("analysis.min_break must not be negative, got %d", c.Analysis.MinBreak)
	}
	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 2 {
		return fmt.Errorf("analysis.temperature must be within [0, 2], got %g", c.Analysis.Temperature)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when caching is enabled")
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return trimmed, nil
}
