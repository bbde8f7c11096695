package llm

import "context"

// Request is one prompt sent to a model provider.
type Request struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     float32
	// JSON asks providers that support it to constrain output to a JSON object.
	JSON bool
}

// LLM is a hosted model that turns a prompt into text.
type LLM interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
	GetModel() string
}
