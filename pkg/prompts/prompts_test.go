package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLogPromptEmbedsChunk(t *testing.T) {
	prompt := BuildLogPrompt("ERROR db timeout", "")

	assert.Contains(t, prompt, "**Log Data:**\nERROR db timeout\n")
	assert.Contains(t, prompt, `"root_causes"`)
	assert.Contains(t, prompt, "Return ONLY the JSON object")
	assert.NotContains(t, prompt, "User Context")
}

func TestBuildLogPromptWithContext(t *testing.T) {
	prompt := BuildLogPrompt("WARN retrying", "started after the 2.3 deploy")

	assert.Contains(t, prompt, "\n**User Context:** started after the 2.3 deploy\n")
	assert.Less(t, strings.Index(prompt, "User Context"), strings.Index(prompt, "Log Data"))
}

func TestBuildLogPromptKeepsPercentSigns(t *testing.T) {
	prompt := BuildLogPrompt("disk 99% full %s %d", "100%")

	assert.Contains(t, prompt, "disk 99% full %s %d")
	assert.Contains(t, prompt, "**User Context:** 100%")
}

func TestBuildChatPrompt(t *testing.T) {
	prompt := BuildChatPrompt("how do I tail journald?")

	assert.True(t, strings.HasPrefix(prompt, "You are Nova"))
	assert.Contains(t, prompt, "**User Question:** how do I tail journald?")
}
