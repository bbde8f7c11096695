// Package logtext prepares raw log text for model analysis: it removes
// terminal noise and cuts the result into bounded, line-aligned chunks.
package logtext
