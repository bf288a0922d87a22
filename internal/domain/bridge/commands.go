package bridge

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/action"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/completion"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/search"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/vfs"
	"go.uber.org/zap"
)

// Session commands

func (b *Bridge) CreateSession(spec session.Spec) session.Serialized {
	return b.sessions.CreateSession(spec).Serialize()
}

func (b *Bridge) CreateNewSession() session.Serialized {
	return b.sessions.CreateNewSession().Serialize()
}

func (b *Bridge) CloseSession(name, switchTo string) bool {
	return b.sessions.CloseSession(name, switchTo)
}

func (b *Bridge) CloseCurrentSession() bool {
	return b.sessions.CloseCurrentSession()
}

func (b *Bridge) CloseSessions() {
	b.sessions.CloseSessions()
}

func (b *Bridge) LoadSessions(list []session.Spec, active string) {
	b.sessions.LoadSessions(list, active)
}

func (b *Bridge) SetActiveSession(name string) bool {
	return b.sessions.SetActiveSession(name)
}

func (b *Bridge) SwitchToLastSession() bool {
	return b.sessions.SwitchToLastSession()
}

func (b *Bridge) ReopenLastClosedSession() bool {
	return b.sessions.ReopenLastClosedSession()
}

// ReopenSession reopens the last closed session and returns it
func (b *Bridge) ReopenSession() (session.Serialized, bool) {
	return b.sessions.ReopenSession()
}

func (b *Bridge) RenameSession(newName, oldName string) bool {
	return b.sessions.RenameSession(newName, oldName)
}

func (b *Bridge) ReorderSessions(names []string) {
	b.sessions.ReorderSessions(names)
}

func (b *Bridge) SetSessionCode(name, code string) bool {
	return b.sessions.SetSessionCode(name, code)
}

func (b *Bridge) SetPublishData(data session.PublishData) bool {
	return b.sessions.SetPublishData(data)
}

func (b *Bridge) GetSessions() []session.Serialized {
	return b.sessions.Sessions()
}

func (b *Bridge) NextSessionName() string {
	return b.sessions.NextSessionName()
}

// Editor commands

func (b *Bridge) SetCode(code string, keepViewState bool) bool {
	return b.sessions.SetCode(code, keepViewState)
}

func (b *Bridge) SetLanguage(language string) bool {
	return b.sessions.SetLanguage(language)
}

// GotoLine moves the cursor of the visible session to the start of line
func (b *Bridge) GotoLine(line int) bool {
	return b.sessions.RevealSession("", session.Position{Line: line, Column: 1})
}

// SubmitLuaReport replaces the lint markers of the visible session
func (b *Bridge) SubmitLuaReport(report LuaReport) bool {
	return b.sessions.SetMarkers(session.LintOwner, report.markers())
}

// Problems returns the lint markers of the visible session. The list is
// empty, never nil, when there is nothing to show.
func (b *Bridge) Problems() Problems {
	name, markers := b.sessions.Markers(session.LintOwner)
	if markers == nil {
		markers = []session.Marker{}
	}
	return Problems{Session: name, Markers: markers}
}

// GotoProblem moves the cursor to the start of the index-th problem of the
// visible session
func (b *Bridge) GotoProblem(index int) bool {
	name, markers := b.sessions.Markers(session.LintOwner)
	if index < 0 || index >= len(markers) {
		b.logger.Warn("No such problem", zap.Int("index", index), zap.Int("count", len(markers)))
		return false
	}
	m := markers[index]
	return b.sessions.RevealSession(name, session.Position{Line: m.StartLine, Column: m.StartColumn})
}

// SetTheme selects a registered theme and tells the host about it
func (b *Bridge) SetTheme(id string) error {
	if err := b.themes.Set(id); err != nil {
		b.logger.Warn("Cannot set theme", zap.String("theme", id), zap.Error(err))
		return err
	}
	b.emit("theme_changed", func() { b.host.OnThemeChanged(id) })
	return nil
}

// AddAction registers a host action; running it calls Host.OnAction
func (b *Bridge) AddAction(a action.Action) error {
	id := a.ID
	a.Run = func() { b.emit("action", func() { b.host.OnAction(id) }) }
	if err := b.actions.Add(a); err != nil {
		b.logger.Warn("Cannot add action", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (b *Bridge) SetTabBarVisible(visible, allowCommands bool) {
	b.uiMu.Lock()
	defer b.uiMu.Unlock()
	b.ui.TabBarVisible = visible
	b.ui.AllowTabCommands = allowCommands
}

func (b *Bridge) SetSidebarVisible(visible bool) {
	b.uiMu.Lock()
	defer b.uiMu.Unlock()
	b.ui.SidebarVisible = visible
}

func (b *Bridge) UI() UIState {
	b.uiMu.RLock()
	defer b.uiMu.RUnlock()
	return b.ui
}

// Completion commands

func (b *Bridge) AddAutocompleteValue(item completion.Item) {
	b.completion.AddValue(item)
}

func (b *Bridge) AddAutocompleteValues(items []completion.Item) {
	b.completion.AddValues(items)
}

func (b *Bridge) LoadAutocomplete(data completion.ClientData) {
	b.completion.LoadClientData(data)
}

func (b *Bridge) LoadAutocompleteState(state []byte) error {
	return b.completion.LoadState(state)
}

// ExtendAutocompleteWithURL merges a remote feed into the store. Failures
// are logged and leave the store untouched.
func (b *Bridge) ExtendAutocompleteWithURL(ctx context.Context, url string) int {
	if b.feed == nil {
		b.logger.Warn("No completion feed configured", zap.String("url", url))
		return 0
	}

	items, err := b.feed.Fetch(ctx, url)
	if err != nil {
		return 0
	}
	b.completion.Extend(items)
	return len(items)
}

func (b *Bridge) ResetAutocompletion() {
	b.completion.Reset()
}

func (b *Bridge) AddSnippet(name, code string) {
	b.completion.AddSnippet(name, code)
}

func (b *Bridge) LoadSnippets(snippets []completion.Snippet) {
	b.completion.LoadSnippets(snippets)
}

// Filesystem and search commands

func (b *Bridge) AddFile(path, content string) error {
	normalized := vfs.Normalize(path)
	if normalized == "" {
		return fmt.Errorf("invalid file path %q", path)
	}
	b.fs.Add(normalized, content)
	return nil
}

func (b *Bridge) GetFile(path string) (string, bool) {
	return b.fs.Get(vfs.Normalize(path))
}

func (b *Bridge) RemoveFile(path string) bool {
	return b.fs.Remove(vfs.Normalize(path))
}

// ListFiles returns every VFS path, sorted
func (b *Bridge) ListFiles() []string {
	paths := b.fs.Paths()
	sort.Strings(paths)
	return paths
}

// ExportFiles writes the VFS to w as a tar archive
func (b *Bridge) ExportFiles(ctx context.Context, w io.Writer, compression string) (int, error) {
	return vfs.WriteArchive(ctx, w, b.fs, compression)
}

// ImportFiles adds the files of a tar archive to the VFS
func (b *Bridge) ImportFiles(ctx context.Context, r io.Reader) (int, error) {
	n, err := vfs.ReadArchive(ctx, r, b.fs, 0)
	if err != nil {
		b.logger.Warn("Failed to import archive", zap.Int("added", n), zap.Error(err))
	}
	return n, err
}

func (b *Bridge) FileTree() *vfs.Node {
	return b.fs.Tree()
}

func (b *Bridge) Search(ctx context.Context, opts search.Options) search.Results {
	return b.search.Search(ctx, opts)
}

func (b *Bridge) OpenResult(res search.Result) error {
	return b.search.Activate(res)
}
