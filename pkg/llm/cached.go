package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/logai/pkg/cache"
)

// Cached memoizes replies of another LLM. Identical prompts with identical
// sampling settings are answered from the store until the TTL expires.
type Cached struct {
	inner  LLM
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(inner LLM, store cache.Store, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{inner: inner, store: store, ttl: ttl, logger: logger}
}

func (c *Cached) Generate(ctx context.Context, r Request) (string, error) {
	key := c.key(r)

	if text, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache lookup failed", zap.Error(err))
	} else if ok {
		c.logger.Debug("cache hit", zap.String("key", key))
		return text, nil
	}

	text, err := c.inner.Generate(ctx, r)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(ctx, key, text, c.ttl); err != nil {
		c.logger.Warn("cache store failed", zap.Error(err))
	}
	return text, nil
}

func (c *Cached) key(r Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%g\x00%t\x00", c.inner.Name(), c.inner.GetModel(), r.MaxOutputTokens, r.Temperature, r.JSON)
	h.Write([]byte(r.Prompt))
	return "logai:reply:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Cached) Name() string {
	return c.inner.Name()
}

func (c *Cached) GetModel() string {
	return c.inner.GetModel()
}
