package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/logai/pkg/llm"
	"github.com/helmcode/logai/pkg/logtext"
	"github.com/helmcode/logai/pkg/model"
	"github.com/helmcode/logai/pkg/parser"
	"github.com/helmcode/logai/pkg/prompts"
)

// Options are the process-wide analysis limits.
type Options struct {
	MaxCharsPerChunk    int
	MinBreak            int
	MaxOutputTokens     int
	ChatMaxOutputTokens int
	Temperature         float32
	Strategy            parser.Strategy
}

// DefaultOptions match the limits of the hosted log analyzer.
func DefaultOptions() Options {
	return Options{
		MaxCharsPerChunk:    logtext.DefaultMaxChars,
		MinBreak:            logtext.DefaultMinBreak,
		MaxOutputTokens:     800,
		ChatMaxOutputTokens: 500,
		Temperature:         0.1,
		Strategy:            parser.StrategyFirst,
	}
}

type Analyzer struct {
	llm     llm.LLM
	chunker logtext.Chunker
	opts    Options
	logger  *zap.Logger
}

func New(l llm.LLM, opts Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Strategy == "" {
		opts.Strategy = parser.StrategyFirst
	}
	return &Analyzer{
		llm:     l,
		chunker: logtext.Chunker{MaxChars: opts.MaxCharsPerChunk, MinBreak: opts.MinBreak},
		opts:    opts,
		logger:  logger,
	}
}

func NewWithLLM(l llm.LLM) *Analyzer {
	return New(l, DefaultOptions(), nil)
}

// LLM returns the provider the analyzer talks to.
func (a *Analyzer) LLM() llm.LLM {
	return a.llm
}

// AnalyzeText cleans and chunks text, asks the model about every chunk in
// order and interprets the replies. A provider error stops the run.
func (a *Analyzer) AnalyzeText(ctx context.Context, text, userContext string) (*model.Result, error) {
	chunks := a.chunker.Split(logtext.Clean(text))
	a.logger.Info("analyzing log",
		zap.Int("chars", len(text)),
		zap.Int("chunks", len(chunks)),
		zap.String("provider", a.llm.Name()),
		zap.String("model", a.llm.GetModel()))

	raws := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis cancelled after %d/%d chunks: %w", i, len(chunks), err)
		}

		start := time.Now()
		out, err := a.llm.Generate(ctx, llm.Request{
			Prompt:          prompts.BuildLogPrompt(chunk, userContext),
			MaxOutputTokens: a.opts.MaxOutputTokens,
			Temperature:     a.opts.Temperature,
			JSON:            true,
		})
		if err != nil {
			return nil, fmt.Errorf("analyze chunk %d/%d: %w", i+1, len(chunks), err)
		}
		a.logger.Debug("chunk analyzed",
			zap.Int("chunk", i+1),
			zap.Int("chunk_chars", len(chunk)),
			zap.Int("reply_chars", len(out)),
			zap.Duration("took", time.Since(start)))
		raws = append(raws, out)
	}

	result := parser.Interpret(raws, len(chunks), a.opts.Strategy)
	if result.IsFallback() {
		a.logger.Warn("model reply was not a JSON object, returning raw responses", zap.Int("chunks", len(chunks)))
	}
	return result, nil
}

// AnalyzeBytes decodes uploaded content before analysing it.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, data []byte, userContext string) (*model.Result, error) {
	return a.AnalyzeText(ctx, logtext.Decode(data), userContext)
}

// Chat answers a free-text question as the Nova assistant.
func (a *Analyzer) Chat(ctx context.Context, message string) (string, error) {
	out, err := a.llm.Generate(ctx, llm.Request{
		Prompt:          prompts.BuildChatPrompt(message),
		MaxOutputTokens: a.opts.ChatMaxOutputTokens,
		Temperature:     a.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM chat: %w", err)
	}
	return out, nil
}
