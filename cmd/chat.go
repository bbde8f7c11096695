package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/logai/pkg/analyzer"
	"github.com/helmcode/logai/pkg/formatter"
)

var (
	chatProvider string
	chatModel    string
)

func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [MESSAGE...]",
		Short: "Ask Nova, the DevOps assistant",
		Long: `Ask a DevOps question. With a message the answer is printed once;
without one an interactive session reads questions from stdin until "exit".

Examples:
  logai chat "why would nginx return 502 behind a load balancer?"
  logai chat`,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatProvider, "provider", "", "LLM provider (gemini, claude, openai). Defaults to config/env")
	cmd.Flags().StringVar(&chatModel, "model", "", "LLM model to use (overrides default)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(chatProvider, chatModel, "warn")
	if err != nil {
		return err
	}
	defer rt.close()

	assistant, cleanup, err := rt.buildAnalyzer(cmd.Context(), "")
	defer cleanup()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return ask(cmd, assistant, strings.Join(args, " "))
	}
	return chatLoop(cmd, assistant, cmd.InOrStdin())
}

func ask(cmd *cobra.Command, assistant *analyzer.Analyzer, message string) error {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Nova is thinking..."
	s.Start()
	reply, err := assistant.Chat(cmd.Context(), message)
	s.Stop()
	if err != nil {
		return err
	}
	formatter.DisplayChat(cmd.OutOrStdout(), reply)
	return nil
}

func chatLoop(cmd *cobra.Command, assistant *analyzer.Analyzer, in io.Reader) error {
	cyan := color.New(color.FgCyan, color.Bold)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Chat with Nova. Type \"exit\" to quit.")

	scanner := bufio.NewScanner(in)
	for {
		cyan.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		switch message {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := ask(cmd, assistant, message); err != nil {
			// Keep the session alive on provider errors.
			color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
		}
	}
}
