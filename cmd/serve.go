package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/logai/pkg/server"
)

var (
	serveAddr     string
	serveProvider string
	serveModel    string
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the log analysis HTTP service",
		Long: `Serve POST /analyze (multipart "file" plus optional "context"),
POST /chat (form field "message") and GET /healthz.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8000)")
	cmd.Flags().StringVar(&serveProvider, "provider", "", "LLM provider (gemini, claude, openai). Defaults to config/env")
	cmd.Flags().StringVar(&serveModel, "model", "", "LLM model to use (overrides default)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(serveProvider, serveModel, "")
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := rt.buildAnalyzer(ctx, "")
	defer cleanup()
	if err != nil {
		return err
	}

	addr := rt.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	rt.logger.Info("starting",
		zap.String("provider", a.LLM().Name()),
		zap.String("model", a.LLM().GetModel()),
		zap.Int("max_chars_per_chunk", rt.cfg.Analysis.MaxCharsPerChunk),
		zap.Bool("cache", rt.cfg.Cache.Enabled))

	srv := server.New(a, server.Options{
		Addr:            addr,
		MaxUploadBytes:  rt.cfg.Server.MaxUploadBytes,
		RateLimit:       rt.cfg.Server.RateLimit,
		RateBurst:       rt.cfg.Server.RateBurst,
		ShutdownTimeout: rt.cfg.Server.ShutdownTimeout,
		TrustProxy:      rt.cfg.Server.TrustProxy,
	}, rt.logger)
	return srv.ListenAndServe(ctx)
}
