package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/client-go/util/homedir"

	"github.com/helmcode/logai/pkg/formatter"
	"github.com/helmcode/logai/pkg/k8s"
	"github.com/helmcode/logai/pkg/logtext"
)

var (
	analyzeContext     string
	analyzeOutput      string
	analyzeProvider    string
	analyzeModel       string
	analyzeMerge       bool
	analyzeKubeconfig  string
	analyzeKubeContext string
	analyzeNamespace   string
	analyzePod         string
	analyzeContainer   string
	analyzeTail        int64
	analyzeSince       time.Duration
	analyzePrevious    bool
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [FILE|-]",
		Short: "Analyze a log file with AI assistance",
		Long: `Clean a log, split it into chunks and ask the configured model for errors,
root causes and remediation steps.

Examples:
  # Analyze a local file
  logai analyze /var/log/syslog

  # Pipe logs in and give the model a hint
  journalctl -u nginx --since today | logai analyze - --context "502s since the deploy"

  # Analyze the last 500 lines of a pod
  logai analyze --pod api-7d9f -n production --tail 500

  # Combine findings from every chunk and print JSON
  logai analyze big.log --merge -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeContext, "context", "c", "", "Free-text hint to steer the analysis")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&analyzeProvider, "provider", "", "LLM provider (gemini, claude, openai). Defaults to config/env")
	cmd.Flags().StringVar(&analyzeModel, "model", "", "LLM model to use (overrides default)")
	cmd.Flags().BoolVar(&analyzeMerge, "merge", false, "Merge structured findings from all chunks instead of only the first")

	if home := homedir.HomeDir(); home != "" {
		cmd.Flags().StringVar(&analyzeKubeconfig, "kubeconfig", filepath.Join(home, ".kube", "config"), "Path to kubeconfig file")
	}
	cmd.Flags().StringVar(&analyzeKubeContext, "kube-context", "", "Kubeconfig context (overrides current-context)")
	cmd.Flags().StringVarP(&analyzeNamespace, "namespace", "n", "default", "Kubernetes namespace of --pod")
	cmd.Flags().StringVar(&analyzePod, "pod", "", "Read logs from this pod instead of a file")
	cmd.Flags().StringVar(&analyzeContainer, "container", "", "Container of --pod (required for multi-container pods)")
	cmd.Flags().Int64Var(&analyzeTail, "tail", 1000, "Number of recent pod log lines to read (0 for all)")
	cmd.Flags().DurationVar(&analyzeSince, "since", 0, "Only read pod logs newer than this duration")
	cmd.Flags().BoolVar(&analyzePrevious, "previous", false, "Read logs of the previous container instance")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzePod == "" && len(args) == 0 {
		return fmt.Errorf("specify a log file, '-' for stdin, or --pod")
	}
	if analyzePod != "" && len(args) > 0 {
		return fmt.Errorf("use either a log file or --pod, not both")
	}

	rt, err := newRuntime(analyzeProvider, analyzeModel, "warn")
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))

	var text, source string
	if analyzePod != "" {
		s.Suffix = " Reading pod logs..."
		s.Start()
		text, err = readPodLogs(cmd)
		s.Stop()
		if err != nil {
			return err
		}
		source = fmt.Sprintf("pod %s/%s", analyzeNamespace, analyzePod)
	} else {
		text, err = readLogFile(cmd, args[0])
		if err != nil {
			return err
		}
		source = args[0]
	}

	printAnalyzeHeader(source, len(text))

	aiAnalyzer, cleanup, err := rt.buildAnalyzer(ctx, mergeFlag())
	defer cleanup()
	if err != nil {
		return err
	}
	printLLMInfo(aiAnalyzer.LLM())

	s.Suffix = " Analyzing with AI..."
	s.Start()
	result, err := aiAnalyzer.AnalyzeText(ctx, text, analyzeContext)
	s.Stop()
	if err != nil {
		return fmt.Errorf("AI analysis failed: %w", err)
	}
	printSuccess("Analysis complete")

	return formatter.DisplayResults(cmd.OutOrStdout(), result, analyzeOutput)
}

func mergeFlag() string {
	if analyzeMerge {
		return "merge"
	}
	return ""
}

func readLogFile(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read log: %w", err)
	}
	return logtext.Decode(data), nil
}

func readPodLogs(cmd *cobra.Command) (string, error) {
	kubeconfig := analyzeKubeconfig
	if strings.HasPrefix(kubeconfig, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			kubeconfig = filepath.Join(homeDir, kubeconfig[2:])
		}
	}

	client, err := k8s.NewClient(kubeconfig, analyzeKubeContext)
	if err != nil {
		return "", fmt.Errorf("failed to connect to cluster: %w", err)
	}

	if analyzeContainer == "" {
		names, err := client.ContainerNames(cmd.Context(), analyzeNamespace, analyzePod)
		if err != nil {
			return "", err
		}
		if len(names) > 1 {
			return "", fmt.Errorf("pod %s has %d containers, choose one with --container: %s",
				analyzePod, len(names), strings.Join(names, ", "))
		}
	}

	return client.FetchPodLogs(cmd.Context(), k8s.LogOptions{
		Namespace:    analyzeNamespace,
		Pod:          analyzePod,
		Container:    analyzeContainer,
		TailLines:    analyzeTail,
		SinceSeconds: int64(analyzeSince.Seconds()),
		Previous:     analyzePrevious,
	})
}

func printAnalyzeHeader(source string, size int) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, "🔍 AI Log Analyzer")
	fmt.Fprintf(os.Stderr, "📄 Source: %s (%d bytes)\n", source, size)
	if analyzeContext != "" {
		fmt.Fprintf(os.Stderr, "📝 Context: %s\n", analyzeContext)
	}
}
