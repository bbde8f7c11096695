package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/helmcode/logai/pkg/analyzer"
	"github.com/helmcode/logai/pkg/cache"
	"github.com/helmcode/logai/pkg/config"
	"github.com/helmcode/logai/pkg/llm"
	"github.com/helmcode/logai/pkg/parser"
)

var (
	configPath string
	verbose    bool
)

// AddGlobalFlags registers the flags shared by every subcommand.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/logai/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
}

// runtime bundles what a command needs after startup.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

// newRuntime loads configuration and builds the logger. level is used when
// neither --verbose nor the configuration asks for something else; pass ""
// to honour the configured level.
func newRuntime(provider, model, level string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.WithLLMOverrides(provider, model); err != nil {
		return nil, err
	}

	if level == "" {
		level = cfg.LogLevel
	}
	logger, err := buildLogger(level)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// buildAnalyzer wires the provider, the optional reply cache and the
// analysis limits. The returned cleanup closes cache connections.
func (rt *runtime) buildAnalyzer(ctx context.Context, strategy string) (*analyzer.Analyzer, func(), error) {
	cleanup := func() {}

	client, err := llm.NewFactory().CreateFromConfig(ctx, rt.cfg.LLM)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	if rt.cfg.Cache.Enabled {
		var store cache.Store
		if rt.cfg.Cache.RedisAddr != "" {
			r := cache.NewRedis(cache.RedisOptions{
				Addr:     rt.cfg.Cache.RedisAddr,
				Password: rt.cfg.Cache.RedisPassword,
				DB:       rt.cfg.Cache.RedisDB,
			})
			if err := r.Ping(ctx); err != nil {
				rt.logger.Warn("reply cache unavailable, continuing without it", zap.Error(err))
				_ = r.Close()
			} else {
				store = r
				cleanup = func() { _ = r.Close() }
			}
		} else {
			store = cache.NewMemory()
		}
		if store != nil {
			client = llm.NewCached(client, store, rt.cfg.Cache.TTL, rt.logger)
		}
	}

	if strategy == "" {
		strategy = rt.cfg.Analysis.MergeStrategy
	}
	s, err := parser.ParseStrategy(strategy)
	if err != nil {
		return nil, cleanup, err
	}

	opts := analyzer.Options{
		MaxCharsPerChunk:    rt.cfg.Analysis.MaxCharsPerChunk,
		MinBreak:            rt.cfg.Analysis.MinBreak,
		MaxOutputTokens:     rt.cfg.Analysis.MaxOutputTokens,
		ChatMaxOutputTokens: rt.cfg.Analysis.ChatMaxOutputTokens,
		Temperature:         rt.cfg.Analysis.Temperature,
		Strategy:            s,
	}
	return analyzer.New(client, opts, rt.logger), cleanup, nil
}

func (rt *runtime) close() {
	_ = rt.logger.Sync()
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printLLMInfo(l llm.LLM) {
	fmt.Fprintf(os.Stderr, "🤖 Provider: %s (%s)\n", l.Name(), l.GetModel())
}
