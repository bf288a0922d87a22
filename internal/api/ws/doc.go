// Package ws carries the editor bridge over WebSocket. The Hub is the
// bridge's Host: every host callback is broadcast to all connected clients,
// and inbound messages are dispatched to bridge commands.
//
// Every frame is a JSON envelope:
//
//	{"id": "7", "type": "create_session", "payload": {...}}
//
// Replies to a request carry its id with type "result" or "error".
// Broadcasts have no id.
//
// Message Types (Server → Client):
//   - connected: client id plus the current sessions and theme
//   - ready, code, session_focus, session_update
//   - session_exported, session_imported, session_published
//   - theme_changed, action, execute, open_url
//   - result, error, pong
//
// Example Usage:
//
//	hub := ws.NewHub(logger, metrics)
//	b := bridge.New(hub, sessions, fs, cfg)
//	hub.Attach(b)
//	router.GET("/ws", hub.HandleConnection)
package ws
