package bridge

import (
	"net/url"
	"strings"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/keybind"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"go.uber.org/zap"
)

// Ready tells the host the editor is usable
func (b *Bridge) Ready() {
	b.emit("ready", b.host.OnReady)
}

// ExportSession hands a session's current content to the host
func (b *Bridge) ExportSession(name string) bool {
	s, ok := b.sessions.Get(name)
	if !ok {
		b.logger.Warn("Cannot find session to export", zap.String("name", name))
		return false
	}
	ser, code := s.Serialize(), s.Content()
	b.emit("session_exported", func() { b.host.OnSessionExported(ser, code) })
	return true
}

// ImportSession activates name and asks the host to import code into it.
// Blank code is ignored.
func (b *Bridge) ImportSession(name, code string) bool {
	if strings.TrimSpace(code) == "" {
		return false
	}
	if !b.sessions.SetActiveSession(name) {
		return false
	}

	s, ok := b.sessions.Get(name)
	if !ok {
		return false
	}
	ser := s.Serialize()
	b.emit("session_imported", func() { b.host.OnSessionImported(ser, code) })
	return true
}

// PublishSession forwards a publish request for name
func (b *Bridge) PublishSession(name string, data session.PublishData) bool {
	s, ok := b.sessions.Get(name)
	if !ok {
		b.logger.Warn("Cannot find session to publish", zap.String("name", name))
		return false
	}
	ser := s.Serialize()
	b.emit("session_published", func() { b.host.OnSessionPublished(ser, data) })
	return true
}

// Execute sends the visible buffer to the host for running in realm
func (b *Bridge) Execute(realm string) bool {
	s, ok := b.sessions.Active()
	if !ok {
		b.logger.Warn("No active session to execute", zap.String("realm", realm))
		return false
	}
	code := s.Content()
	b.emit("execute", func() { b.host.OnExecute(realm, code) })
	return true
}

// OpenURL forwards a clicked link. Only http and https links leave the editor.
func (b *Bridge) OpenURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		b.logger.Warn("Refusing to open link", zap.String("url", raw))
		return false
	}
	b.emit("open_url", func() { b.host.OpenURL(raw) })
	return true
}

// TriggerAction runs a registered action
func (b *Bridge) TriggerAction(id string) bool {
	if !b.actions.Trigger(id) {
		b.logger.Warn("Cannot find action", zap.String("id", id))
		return false
	}
	return true
}

// PressKeys runs the action bound to a keybinding expression
func (b *Bridge) PressKeys(expr string) bool {
	binding, err := keybind.Parse(expr)
	if err != nil {
		b.logger.Warn("Invalid keybinding", zap.String("keys", expr), zap.Error(err))
		return false
	}
	a, ok := b.actions.Lookup(binding)
	if !ok {
		return false
	}
	return b.actions.Trigger(a.ID)
}
