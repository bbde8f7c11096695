// Package server exposes the analyzer over HTTP: multipart log uploads on
// /analyze and assistant questions on /chat.
package server
