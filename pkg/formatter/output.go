package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/logai/pkg/model"
)

// DisplayResults formats and displays the analysis results
func DisplayResults(w io.Writer, result *model.Result, format string) error {
	switch format {
	case "json":
		return displayJSON(w, result)
	case "yaml":
		return displayYAML(w, result)
	case "human", "":
		return displayHuman(w, result)
	default:
		return fmt.Errorf("unknown output format: %s (supported: human, json, yaml)", format)
	}
}

// DisplayChat prints an assistant reply.
func DisplayChat(w io.Writer, reply string) {
	magenta := color.New(color.FgMagenta, color.Bold)
	magenta.Fprintln(w, "Nova:")
	fmt.Fprintln(w, wrapText(reply, 100, "   "))
	fmt.Fprintln(w)
}

func displayJSON(w io.Writer, result *model.Result) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, result *model.Result) error {
	output, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, result *model.Result) error {
	if result.IsFallback() {
		displayFallback(w, result.Fallback)
		return nil
	}

	findings, err := result.Findings()
	if err != nil {
		return err
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)

	if findings.Summary != "" {
		cyan.Fprintln(w, "SUMMARY:")
		fmt.Fprintf(w, "   %s\n\n", findings.Summary)
	}

	if len(findings.Issues) > 0 {
		yellow.Fprintln(w, "ISSUES FOUND:")
		for i, issue := range findings.Issues {
			severityColor := getSeverityColor(issue.Severity)
			fmt.Fprintf(w, "   %d. %s %s", i+1, getSeverityIcon(issue.Severity), issue.Error)
			if issue.Severity != "" {
				severityColor.Fprintf(w, " [%s]", strings.ToUpper(issue.Severity))
			}
			if count := issue.CountString(); count != "" {
				fmt.Fprintf(w, " x%s", count)
			}
			fmt.Fprintln(w)
			if issue.ExampleLine != "" {
				fmt.Fprintf(w, "      Example: %s\n", color.YellowString(issue.ExampleLine))
			}
		}
		fmt.Fprintln(w)
	}

	if len(findings.RootCauses) > 0 {
		red.Fprintln(w, "ROOT CAUSES:")
		printList(w, findings.RootCauses, nil)
	}

	if len(findings.Remediation) > 0 {
		green.Fprintln(w, "REMEDIATION:")
		printList(w, findings.Remediation, nil)
	}

	if len(findings.Commands) > 0 {
		cyan.Fprintln(w, "COMMANDS:")
		printList(w, findings.Commands, color.New(color.FgCyan))
	}

	// Footer
	fmt.Fprintln(w, strings.Repeat("─", 80))
	if meta, ok := result.Meta(); ok {
		fmt.Fprintf(w, "%s\n", color.HiBlackString("%d chunk(s) processed", meta.ChunksProcessed))
	}
	fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
	return nil
}

func displayFallback(w io.Writer, fb *model.Fallback) {
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	yellow.Fprintf(w, "The model did not return structured findings (%s).\n\n", fb.Note)
	for i, raw := range fb.RawResponses {
		white.Fprintf(w, "RESPONSE %d:\n", i+1)
		fmt.Fprintln(w, wrapText(raw, 80, "   "))
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, strings.Repeat("─", 80))
}

func printList(w io.Writer, items []string, c *color.Color) {
	for i, item := range items {
		if c != nil {
			item = c.Sprint(item)
		}
		fmt.Fprintf(w, "   %d. %s\n", i+1, item)
	}
	fmt.Fprintln(w)
}

func getSeverityColor(severity string) *color.Color {
	switch strings.ToLower(severity) {
	case "critical":
		return color.New(color.FgRed, color.Bold)
	case "error":
		return color.New(color.FgRed)
	case "warning", "warn":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}

func getSeverityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "error":
		return "🟠"
	case "warning", "warn":
		return "🟡"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
