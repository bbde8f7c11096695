package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/logai/pkg/cache"
	"github.com/helmcode/logai/pkg/config"
)

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	return body
}

func TestClaudeGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		body := decodeBody(t, r)
		assert.Equal(t, "claude-test", body["model"])
		assert.EqualValues(t, 800, body["max_tokens"])
		assert.InDelta(t, 0.1, body["temperature"], 1e-6)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"summary\":\"ok\"}"}]}`))
	}))
	defer srv.Close()

	c := NewClaudeWithModel("test-key", "claude-test").WithBaseURL(srv.URL + "/")
	out, err := c.Generate(context.Background(), Request{Prompt: "hi", MaxOutputTokens: 800, Temperature: 0.1})

	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)
	assert.Equal(t, "claude", c.Name())
	assert.Equal(t, "claude-test", c.GetModel())
}

func TestClaudeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "http status", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, want: "status 401"},
		{name: "error body", status: http.StatusOK, body: `{"error":{"message":"overloaded"}}`, want: "overloaded"},
		{name: "no content", status: http.StatusOK, body: `{"content":[]}`, want: "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClaude("k").WithBaseURL(srv.URL).Generate(context.Background(), Request{Prompt: "p"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpenAIGenerateJSONMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
		assert.EqualValues(t, 500, body["max_tokens"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test").WithBaseURL(srv.URL)
	out, err := o.Generate(context.Background(), Request{Prompt: "p", MaxOutputTokens: 500, JSON: true})

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "gpt-4o", o.GetModel())
}

func TestOpenAIHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOpenAI("k").WithBaseURL(srv.URL).Generate(ctx, Request{Prompt: "p"})
	assert.Error(t, err)
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		body := decodeBody(t, r)
		gen, ok := body["generationConfig"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "application/json", gen["responseMimeType"])
		assert.EqualValues(t, 800, gen["maxOutputTokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"summary\":\"disk full\"}"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "g-key", GeminiOptions{Model: "gemini-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), Request{Prompt: "p", MaxOutputTokens: 800, Temperature: 0.1, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"disk full"}`, out)
	assert.Equal(t, "gemini", g.Name())
	assert.Equal(t, "gemini-test", g.GetModel())
}

func TestGeminiEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "g-key", GeminiOptions{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", g.GetModel())

	_, err = g.Generate(context.Background(), Request{Prompt: "p"})
	assert.Error(t, err)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", GeminiOptions{})
	assert.Error(t, err)
}

func TestFactoryCreateLLM(t *testing.T) {
	f := NewFactory()
	ctx := context.Background()

	l, err := f.CreateLLM(ctx, ProviderClaude, map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.IsType(t, &Claude{}, l)
	assert.Equal(t, defaultClaudeModel, l.GetModel())

	l, err = f.CreateLLM(ctx, ProviderOpenAI, map[string]string{"api_key": "k", "model": "gpt-4.1", "timeout": "5s"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, l)
	assert.Equal(t, "gpt-4.1", l.GetModel())

	l, err = f.CreateLLM(ctx, ProviderGemini, map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, l)

	_, err = f.CreateLLM(ctx, ProviderClaude, map[string]string{})
	assert.Error(t, err)

	_, err = f.CreateLLM(ctx, ProviderOpenAI, map[string]string{"api_key": "k", "timeout": "soon"})
	assert.Error(t, err)

	_, err = f.CreateLLM(ctx, Provider("llama"), map[string]string{"api_key": "k"})
	assert.Error(t, err)

	assert.Len(t, f.GetAvailableProviders(), 3)
}

func TestFactoryCreateFromConfig(t *testing.T) {
	l, err := NewFactory().CreateFromConfig(context.Background(), config.LLMConfig{
		Provider: "OpenAI",
		APIKey:   "k",
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", l.Name())
}

func TestFactoryCreateFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("CLAUDE_MODEL", "")

	l, err := NewFactory().CreateFromEnv(context.Background(), "claude", "claude-test")
	require.NoError(t, err)
	assert.Equal(t, "claude", l.Name())
	assert.Equal(t, "claude-test", l.GetModel())

	t.Setenv("OPENAI_API_KEY", "")
	_, err = NewFactory().CreateFromEnv(context.Background(), "openai", "")
	assert.Error(t, err)
}

type countingLLM struct {
	calls atomic.Int32
	reply string
	err   error
}

func (c *countingLLM) Generate(context.Context, Request) (string, error) {
	c.calls.Add(1)
	return c.reply, c.err
}

func (c *countingLLM) Name() string     { return "fake" }
func (c *countingLLM) GetModel() string { return "fake-1" }

func TestCachedServesRepeatedPrompts(t *testing.T) {
	inner := &countingLLM{reply: "answer"}
	c := NewCached(inner, cache.NewMemory(), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := c.Generate(ctx, Request{Prompt: "same", Temperature: 0.1})
		require.NoError(t, err)
		assert.Equal(t, "answer", out)
	}
	assert.EqualValues(t, 1, inner.calls.Load())

	_, err := c.Generate(ctx, Request{Prompt: "same", Temperature: 0.2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, inner.calls.Load())

	assert.Equal(t, "fake", c.Name())
	assert.Equal(t, "fake-1", c.GetModel())
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	inner := &countingLLM{err: assert.AnError}
	store := cache.NewMemory()
	c := NewCached(inner, store, time.Minute, nil)

	_, err := c.Generate(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, store.Len())
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, assert.AnError
}

func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return assert.AnError
}

func TestCachedIgnoresStoreFailures(t *testing.T) {
	inner := &countingLLM{reply: "live"}
	c := NewCached(inner, brokenStore{}, time.Minute, nil)

	out, err := c.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "live", out)
}
