package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFallbackJSONShape(t *testing.T) {
	res := NewFallback(2, []string{"not json", "also not json"})

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"note":"2 chunk(s) processed","raw_responses":["not json","also not json"]}`, string(b))
	assert.True(t, res.IsFallback())
}

func TestFallbackWithoutResponsesIsEmptyList(t *testing.T) {
	b, err := json.Marshal(NewFallback(0, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"note":"0 chunk(s) processed","raw_responses":[]}`, string(b))
}

func TestStructuredKeepsUnknownKeys(t *testing.T) {
	res := &Result{Structured: map[string]any{
		"summary":    "db down",
		"confidence": "high",
		MetaKey:      Meta{ChunksProcessed: 3},
	}}

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"db down","confidence":"high","_meta":{"chunks_processed":3}}`, string(b))

	meta, ok := res.Meta()
	require.True(t, ok)
	assert.Equal(t, 3, meta.ChunksProcessed)
}

func TestFindingsDecodesStructured(t *testing.T) {
	var structured map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"summary": "OOM kills",
		"issues": [{"error": "OOMKilled", "count": 4, "severity": "CRITICAL"}, {"error": "probe failed", "count": "12"}],
		"root_causes": ["memory limit too low"],
		"remediation": ["raise limit"],
		"commands": ["kubectl top pod"]
	}`), &structured))

	f, err := (&Result{Structured: structured}).Findings()
	require.NoError(t, err)
	assert.Equal(t, "OOM kills", f.Summary)
	require.Len(t, f.Issues, 2)
	assert.Equal(t, "4", f.Issues[0].CountString())
	assert.Equal(t, "12", f.Issues[1].CountString())
	assert.Equal(t, []string{"kubectl top pod"}, f.Commands)
}

func TestFindingsToleratesLooseShapes(t *testing.T) {
	var structured map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"summary": 3,
		"issues": {"error": "disk full", "severity": "error"},
		"root_causes": "primary database is down",
		"remediation": ["restart", 2, null],
		"commands": null
	}`), &structured))

	f, err := (&Result{Structured: structured}).Findings()
	require.NoError(t, err)
	assert.Equal(t, "3", f.Summary)
	require.Len(t, f.Issues, 1)
	assert.Equal(t, "disk full", f.Issues[0].Error)
	assert.Equal(t, []string{"primary database is down"}, f.RootCauses)
	assert.Equal(t, []string{"restart", "2"}, f.Remediation)
	assert.Empty(t, f.Commands)
}

func TestFindingsOnFallback(t *testing.T) {
	_, err := NewFallback(1, []string{"x"}).Findings()
	assert.Error(t, err)
}

func TestResultYAML(t *testing.T) {
	b, err := yaml.Marshal(NewFallback(1, []string{"raw"}))
	require.NoError(t, err)
	assert.Contains(t, string(b), "note: 1 chunk(s) processed")
	assert.Contains(t, string(b), "- raw")
}
