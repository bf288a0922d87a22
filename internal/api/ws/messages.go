package ws

import (
	"encoding/json"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
)

// Outbound message types
const (
	MsgConnected        = "connected"
	MsgReady            = "ready"
	MsgCode             = "code"
	MsgSessionFocus     = "session_focus"
	MsgSessionUpdate    = "session_update"
	MsgSessionExported  = "session_exported"
	MsgSessionImported  = "session_imported"
	MsgSessionPublished = "session_published"
	MsgThemeChanged     = "theme_changed"
	MsgAction           = "action"
	MsgExecute          = "execute"
	MsgOpenURL          = "open_url"
	MsgResult           = "result"
	MsgError            = "error"
	MsgPong             = "pong"
)

// Request is an inbound frame
type Request struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is an outbound frame
type Message struct {
	ID        string      `json:"id,omitempty"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func newMessage(id, msgType string, payload interface{}) Message {
	return Message{ID: id, Type: msgType, Payload: payload, Timestamp: time.Now().Unix()}
}

type errorPayload struct {
	Message string `json:"message"`
}

type okPayload struct {
	OK bool `json:"ok"`
}

type codePayload struct {
	Code      string `json:"code"`
	VersionID int    `json:"versionId"`
}

type sessionCodePayload struct {
	Session session.Serialized `json:"session"`
	Code    string             `json:"code"`
}

type publishedPayload struct {
	Session session.Serialized  `json:"session"`
	Data    session.PublishData `json:"data"`
}

type executePayload struct {
	Realm string `json:"realm"`
	Code  string `json:"code"`
}

type connectedPayload struct {
	ClientID string               `json:"clientId"`
	Sessions []session.Serialized `json:"sessions"`
	Theme    string               `json:"theme"`
}
