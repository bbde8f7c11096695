package parser

import (
	"github.com/helmcode/logai/pkg/model"
)

// merge folds every parsable reply into one findings object. The first parsed
// reply provides the base, so keys outside the findings shape come from it.
func merge(raws []string, chunks int) *model.Result {
	var (
		base     map[string]any
		merged   int
		unparsed []int
		acc      findingsAccumulator
	)

	for i, raw := range raws {
		obj, err := ParseObject(raw)
		if err != nil {
			unparsed = append(unparsed, i)
			continue
		}
		if base == nil {
			base = obj
		}
		acc.add(obj)
		merged++
	}

	if base == nil {
		return model.NewFallback(chunks, raws)
	}

	acc.writeTo(base)
	base[model.MetaKey] = model.Meta{
		ChunksProcessed: chunks,
		ChunksMerged:    merged,
		UnparsedChunks:  unparsed,
	}
	return &model.Result{Structured: base}
}

type findingsAccumulator struct {
	summary     string
	issues      []any
	issueSeen   map[string]bool
	rootCauses  stringSet
	remediation stringSet
	commands    stringSet
}

func (a *findingsAccumulator) add(obj map[string]any) {
	if s, ok := obj["summary"].(string); ok && a.summary == "" {
		a.summary = s
	}

	if issues, ok := obj["issues"].([]any); ok {
		if a.issueSeen == nil {
			a.issueSeen = make(map[string]bool)
		}
		for _, issue := range issues {
			key := issueKey(issue)
			if key != "" && a.issueSeen[key] {
				continue
			}
			if key != "" {
				a.issueSeen[key] = true
			}
			a.issues = append(a.issues, issue)
		}
	}

	a.rootCauses.addAll(obj["root_causes"])
	a.remediation.addAll(obj["remediation"])
	a.commands.addAll(obj["commands"])
}

func (a *findingsAccumulator) writeTo(obj map[string]any) {
	if a.summary != "" {
		obj["summary"] = a.summary
	}
	if a.issues != nil {
		obj["issues"] = a.issues
	}
	a.rootCauses.writeTo(obj, "root_causes")
	a.remediation.writeTo(obj, "remediation")
	a.commands.writeTo(obj, "commands")
}

func issueKey(issue any) string {
	m, ok := issue.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["error"].(string)
	return s
}

// stringSet keeps insertion order.
type stringSet struct {
	items []any
	seen  map[string]bool
}

func (s *stringSet) addAll(v any) {
	list, ok := v.([]any)
	if !ok {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, item := range list {
		str, ok := item.(string)
		if !ok {
			s.items = append(s.items, item)
			continue
		}
		if s.seen[str] {
			continue
		}
		s.seen[str] = true
		s.items = append(s.items, str)
	}
}

func (s *stringSet) writeTo(obj map[string]any, key string) {
	if s.items != nil {
		obj[key] = s.items
	}
}
