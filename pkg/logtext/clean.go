package logtext

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiPattern matches CSI escape sequences (colors, cursor movement, line erase).
var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;?]*[ -/]*[@-~]")

// Clean strips ANSI escape sequences and NUL bytes, normalizes CRLF line
// endings and trims surrounding whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = ansiPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// Decode converts uploaded bytes to a string, replacing invalid UTF-8
// instead of rejecting it. Every invalid byte becomes one U+FFFD.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
