package session

import (
	"encoding/json"

	"github.com/A5R13L/gmod-monaco-editor/internal/shared/id"
)

// DefaultLanguage is used when a session is created without one
const DefaultLanguage = "glua"

// PublishData is workshop metadata attached to a session. Every field is
// optional so partial updates can be merged.
type PublishData struct {
	ID             *string `json:"id,omitempty"`
	Name           *string `json:"name,omitempty"`
	Version        *string `json:"version,omitempty"`
	Description    *string `json:"description,omitempty"`
	CanRunOnClient *bool   `json:"canRunOnClient,omitempty"`
	CanRunOnMenu   *bool   `json:"canRunOnMenu,omitempty"`
	IsPrivate      *bool   `json:"isPrivate,omitempty"`
}

// Merge copies every set field of other into p
func (p *PublishData) Merge(other PublishData) {
	if other.ID != nil {
		p.ID = other.ID
	}
	if other.Name != nil {
		p.Name = other.Name
	}
	if other.Version != nil {
		p.Version = other.Version
	}
	if other.Description != nil {
		p.Description = other.Description
	}
	if other.CanRunOnClient != nil {
		p.CanRunOnClient = other.CanRunOnClient
	}
	if other.CanRunOnMenu != nil {
		p.CanRunOnMenu = other.CanRunOnMenu
	}
	if other.IsPrivate != nil {
		p.IsPrivate = other.IsPrivate
	}
}

// Spec describes a session to create or update. Zero fields mean "not
// provided".
type Spec struct {
	Name      string          `json:"name,omitempty"`
	Code      string          `json:"code,omitempty"`
	File      string          `json:"file,omitempty"`
	Language  string          `json:"language,omitempty"`
	IsFocused bool            `json:"isFocused,omitempty"`
	ViewState json.RawMessage `json:"viewState,omitempty"`
}

// Serialized is the form of a session that crosses the host boundary
type Serialized struct {
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	File      string          `json:"file,omitempty"`
	Language  string          `json:"language"`
	IsFocused bool            `json:"isFocused"`
	ViewState json.RawMessage `json:"viewState,omitempty"`
	VersionID int             `json:"versionId"`
}

// Spec converts a serialized session back into creation input
func (s Serialized) Spec() Spec {
	return Spec{
		Name:      s.Name,
		Code:      s.Code,
		File:      s.File,
		Language:  s.Language,
		IsFocused: s.IsFocused,
		ViewState: s.ViewState,
	}
}

// Session is a named buffer plus its per-tab state. Values handed out by the
// Registry are copies; mutate through Registry methods.
type Session struct {
	ID          id.SessionID
	Name        string
	Code        string
	File        string
	Language    string
	IsFocused   bool
	ViewState   json.RawMessage
	VersionID   int
	PublishData *PublishData

	buffer Buffer
}

func newSession(spec Spec, factory BufferFactory) *Session {
	language := spec.Language
	if language == "" {
		language = DefaultLanguage
	}

	s := &Session{
		ID:        id.NewSessionID(),
		Name:      spec.Name,
		Code:      spec.Code,
		File:      spec.File,
		Language:  language,
		ViewState: cloneRaw(spec.ViewState),
	}
	s.buffer = factory(s.Code, s.Language)
	s.VersionID = s.buffer.VersionID()
	return s
}

// Path is the key a session is searched and matched under: its file, or its
// name when it has none.
func (s *Session) Path() string {
	if s.File != "" {
		return s.File
	}
	return s.Name
}

// Serialize snapshots the session for the host. The version comes from the
// buffer when one is attached.
func (s *Session) Serialize() Serialized {
	version := s.VersionID
	if s.buffer != nil {
		version = s.buffer.VersionID()
	}
	return Serialized{
		Name:      s.Name,
		Code:      s.Code,
		File:      s.File,
		Language:  s.Language,
		IsFocused: s.IsFocused,
		ViewState: cloneRaw(s.ViewState),
		VersionID: version,
	}
}

// Content returns the live buffer text, falling back to the cached code
func (s *Session) Content() string {
	if s.buffer != nil {
		return s.buffer.Value()
	}
	return s.Code
}

func (s *Session) snapshot() *Session {
	cp := *s
	cp.ViewState = cloneRaw(s.ViewState)
	if s.buffer != nil {
		cp.Code = s.buffer.Value()
		cp.VersionID = s.buffer.VersionID()
	}
	if s.PublishData != nil {
		pd := *s.PublishData
		cp.PublishData = &pd
	}
	cp.buffer = nil
	return &cp
}

func (s *Session) setCode(code string) {
	s.Code = code
	s.buffer.SetValue(code)
	s.VersionID = s.buffer.VersionID()
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
