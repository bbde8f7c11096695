package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/helmcode/logai/pkg/model"
)

// Strategy selects how per-chunk replies become one result.
type Strategy string

const (
	// StrategyFirst reads only the first chunk's reply.
	StrategyFirst Strategy = "first"
	// StrategyMerge combines the structured replies of every chunk.
	StrategyMerge Strategy = "merge"
)

// ParseStrategy maps a config or flag value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyFirst:
		return StrategyFirst, nil
	case StrategyMerge:
		return StrategyMerge, nil
	default:
		return "", fmt.Errorf("unknown merge strategy: %s (supported: first, merge)", s)
	}
}

var fencePattern = regexp.MustCompile("```[a-zA-Z]*\n|```")

// Interpret turns the raw replies for chunks processed chunks into a result.
// When nothing can be parsed it returns the fallback shape carrying every raw reply.
func Interpret(raws []string, chunks int, strategy Strategy) *model.Result {
	if strategy == StrategyMerge {
		return merge(raws, chunks)
	}

	if len(raws) == 0 {
		return model.NewFallback(chunks, raws)
	}
	obj, err := ParseObject(raws[0])
	if err != nil {
		return model.NewFallback(chunks, raws)
	}
	obj[model.MetaKey] = model.Meta{ChunksProcessed: chunks}
	return &model.Result{Structured: obj}
}

// ParseObject strictly parses a model reply as a JSON object after removing
// markdown code fences.
func ParseObject(raw string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("reply is not a JSON object")
	}
	return obj, nil
}

// stripFences removes markdown code fences such as ```json ... ``` so JSON can be parsed
func stripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}
