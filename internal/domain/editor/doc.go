// Package editor provides headless implementations of the text buffer and
// view contracts from package session. The server runs without a rendering
// widget; these keep the same observable state (content, version, markers,
// cursor, scroll) so the registry and host bridge behave as they would
// against a real editor.
package editor
