// Package main runs the editor backend.
//
// The server hosts the session registry, virtual filesystem, search engine
// and completion store behind a REST API and a WebSocket bridge, so a game
// client can drive the Monaco editor page.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	./server -port 8000 -seed ./garrysmod/lua -themes themes.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
