package logtext

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChars is the chunk size used when none is configured.
	DefaultMaxChars = 4000
	// DefaultMinBreak keeps line-boundary adjustment from producing tiny chunks.
	DefaultMinBreak = 200
)

// Chunker splits log text into pieces of at most MaxChars characters,
// preferring to end a piece at a newline.
type Chunker struct {
	MaxChars int
	MinBreak int
}

// NewChunker returns a Chunker with the default line-break floor.
func NewChunker(maxChars int) Chunker {
	return Chunker{MaxChars: maxChars, MinBreak: DefaultMinBreak}
}

// ChunkText splits text with the default settings for the given size.
func ChunkText(text string, maxChars int) []string {
	return NewChunker(maxChars).Split(text)
}

// Split returns the chunks of text in order. Their concatenation is text.
//
// A window that would cut a line is shortened to end before the last newline
// in it, as long as that newline sits past MinBreak characters. The newline
// itself opens the following chunk.
func (c Chunker) Split(text string) []string {
	maxChars := c.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []string
	for start := 0; start < len(text); {
		end := advance(text, start, maxChars)
		chunk := text[start:end]
		if end < len(text) {
			if nl := strings.LastIndexByte(chunk, '\n'); nl >= 0 && utf8.RuneCountInString(chunk[:nl]) > c.MinBreak {
				chunk = chunk[:nl]
				end = start + nl
			}
		}
		chunks = append(chunks, chunk)
		start = end
	}
	return chunks
}

// advance returns the byte offset n runes past start, capped at len(s).
func advance(s string, start, n int) int {
	i := start
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
