package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var providerEnv = map[string]struct {
	keys  []string
	model string
}{
	"gemini": {keys: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}, model: "GEMINI_MODEL"},
	"claude": {keys: []string{"ANTHROPIC_API_KEY"}, model: "CLAUDE_MODEL"},
	"openai": {keys: []string{"OPENAI_API_KEY"}, model: "OPENAI_MODEL"},
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.applyEnv()

	if v := os.Getenv("LOGAI_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if n, ok := envInt("LOGAI_MAX_CHARS_PER_CHUNK"); ok {
		c.Analysis.MaxCharsPerChunk = n
	}
	if v := os.Getenv("LOGAI_MERGE_STRATEGY"); v != "" {
		c.Analysis.MergeStrategy = v
	}
	if v := os.Getenv("LOGAI_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	for _, key := range []string{"REDIS_ADDR", "VALKEY_ADDR"} {
		if v := os.Getenv(key); v != "" {
			c.Cache.RedisAddr = v
			c.Cache.Enabled = true
			break
		}
	}
	if v := os.Getenv("LOGAI_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
			c.Cache.Enabled = true
		}
	}
}

// applyEnv fills the key and model for the selected provider from its
// environment variables. Values from the config file win over the environment
// for the model; the key variable wins when it is set.
func (l *LLMConfig) applyEnv() {
	env, ok := providerEnv[l.Provider]
	if !ok {
		return
	}
	for _, key := range env.keys {
		if v := os.Getenv(key); v != "" {
			l.APIKey = v
			break
		}
	}
	if l.Model == "" {
		l.Model = os.Getenv(env.model)
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LLMFromEnv resolves provider settings from the environment alone.
// An empty provider falls back to LLM_PROVIDER and then the default.
func LLMFromEnv(provider, model string) LLMConfig {
	cfg := Default()
	cfg.applyEnvOverrides()
	if provider != "" && !strings.EqualFold(provider, cfg.LLM.Provider) {
		cfg.LLM = LLMConfig{Provider: strings.ToLower(provider), Timeout: cfg.LLM.Timeout}
		cfg.LLM.applyEnv()
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	return cfg.LLM
}
