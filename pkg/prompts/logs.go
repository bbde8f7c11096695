package prompts

import "fmt"

// BuildLogPrompt renders the analysis instruction around a single log chunk.
// An empty context leaves the user context section out.
func BuildLogPrompt(logChunk, context string) string {
	contextSection := ""
	if context != "" {
		contextSection = fmt.Sprintf("\n**User Context:** %s\n", context)
	}

	return fmt.Sprintf(`You are an expert DevOps engineer and log analysis specialist. Your task is to analyze system logs and provide actionable insights.

**Instructions:**
1. Carefully examine the log entries for errors, warnings, and anomalies
2. Identify patterns and correlations between events
3. Determine root causes based on error sequences and timestamps
4. Provide specific, actionable remediation steps
5. Return ONLY valid JSON - no markdown, no explanations outside the JSON
%s
**Log Data:**
%s

**Required JSON Output Format:**
{
  "summary": "Brief one-sentence overview of the main issue(s) found",
  "issues": [
    {
      "error": "Error type or message",
      "count": "Number of occurrences",
      "example_line": "Actual log line showing the error",
      "severity": "CRITICAL/ERROR/WARNING"
    }
  ],
  "root_causes": [
    "Primary root cause with technical explanation",
    "Secondary contributing factors"
  ],
  "remediation": [
    "Immediate action to take (with specific commands if applicable)",
    "Follow-up steps to prevent recurrence",
    "Monitoring recommendations"
  ],
  "commands": [
    "grep -i 'error_pattern' /var/log/app.log",
    "systemctl status service_name"
  ]
}

Return ONLY the JSON object, nothing else.
`, contextSection, logChunk)
}
