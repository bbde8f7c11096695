package model

import (
	"encoding/json"
	"fmt"
)

// MetaKey is the key under which run metadata is attached to a structured result.
const MetaKey = "_meta"

// Findings is the record the log prompt asks the model to return.
type Findings struct {
	Summary     string   `json:"summary" yaml:"summary"`
	Issues      []Issue  `json:"issues" yaml:"issues"`
	RootCauses  []string `json:"root_causes" yaml:"root_causes"`
	Remediation []string `json:"remediation" yaml:"remediation"`
	Commands    []string `json:"commands" yaml:"commands"`
}

// Issue is one error class found in the log. Models return the count either
// as a number or a string, so it is kept untyped.
type Issue struct {
	Error       string `json:"error" yaml:"error"`
	Count       any    `json:"count,omitempty" yaml:"count,omitempty"`
	ExampleLine string `json:"example_line,omitempty" yaml:"example_line,omitempty"`
	Severity    string `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// CountString renders Count for display.
func (i Issue) CountString() string {
	switch v := i.Count.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

// Meta records how a structured result was produced.
type Meta struct {
	ChunksProcessed int   `json:"chunks_processed" yaml:"chunks_processed"`
	ChunksMerged    int   `json:"chunks_merged,omitempty" yaml:"chunks_merged,omitempty"`
	UnparsedChunks  []int `json:"unparsed_chunks,omitempty" yaml:"unparsed_chunks,omitempty"`
}

// Fallback is returned when the model reply could not be read as JSON.
type Fallback struct {
	Note         string   `json:"note" yaml:"note"`
	RawResponses []string `json:"raw_responses" yaml:"raw_responses"`
}

// NewFallback builds the degraded result for n processed chunks.
func NewFallback(chunks int, raws []string) *Result {
	if raws == nil {
		raws = []string{}
	}
	return &Result{Fallback: &Fallback{
		Note:         fmt.Sprintf("%d chunk(s) processed", chunks),
		RawResponses: raws,
	}}
}

// Result is either the model's structured JSON object (every key kept, plus
// MetaKey) or a Fallback. Exactly one of Structured and Fallback is set.
type Result struct {
	Structured map[string]any
	Fallback   *Fallback
}

// IsFallback reports whether structured parsing failed.
func (r *Result) IsFallback() bool {
	return r.Fallback != nil
}

// MarshalJSON emits the structured object or the fallback shape.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r.Fallback != nil {
		return json.Marshal(r.Fallback)
	}
	if r.Structured == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Structured)
}

// MarshalYAML mirrors MarshalJSON for the yaml output format.
func (r *Result) MarshalYAML() (any, error) {
	if r.Fallback != nil {
		return r.Fallback, nil
	}
	if r.Structured == nil {
		return map[string]any{}, nil
	}
	return r.Structured, nil
}

// Findings reads the structured object into the typed record. Fields are
// decoded leniently: a string where a list was asked for becomes a one-item
// list, and nested values are rendered as JSON text. Keys the model added
// beyond the requested shape are ignored.
func (r *Result) Findings() (*Findings, error) {
	if r.Fallback != nil {
		return nil, fmt.Errorf("result has no structured findings")
	}
	m := r.Structured
	return &Findings{
		Summary:     textOf(m["summary"]),
		Issues:      issuesOf(m["issues"]),
		RootCauses:  textsOf(m["root_causes"]),
		Remediation: textsOf(m["remediation"]),
		Commands:    textsOf(m["commands"]),
	}, nil
}

func issuesOf(v any) []Issue {
	var items []any
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		items = t
	default:
		items = []any{t}
	}

	issues := make([]Issue, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			if text := textOf(item); text != "" {
				issues = append(issues, Issue{Error: text})
			}
			continue
		}
		issues = append(issues, Issue{
			Error:       textOf(obj["error"]),
			Count:       obj["count"],
			ExampleLine: textOf(obj["example_line"]),
			Severity:    textOf(obj["severity"]),
		})
	}
	return issues
}

func textsOf(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if text := textOf(item); text != "" {
				out = append(out, text)
			}
		}
		return out
	case []string:
		return t
	default:
		if text := textOf(t); text != "" {
			return []string{text}
		}
		return nil
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Meta returns the metadata attached to a structured result, if any.
func (r *Result) Meta() (Meta, bool) {
	if r.Structured == nil {
		return Meta{}, false
	}
	raw, ok := r.Structured[MetaKey]
	if !ok {
		return Meta{}, false
	}
	switch m := raw.(type) {
	case Meta:
		return m, true
	case *Meta:
		return *m, true
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return Meta{}, false
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, false
	}
	return m, true
}
