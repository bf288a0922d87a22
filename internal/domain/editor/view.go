package editor

import (
	"encoding/json"
	"sync"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
)

// ViewState is the saved cursor and scroll of a view
type ViewState struct {
	Cursor    session.Position `json:"cursor"`
	ScrollTop int              `json:"scrollTop"`
}

// HeadlessView tracks what a visible editor would show
type HeadlessView struct {
	mu        sync.Mutex
	buffer    session.Buffer
	cursor    session.Position
	scrollTop int
	focused   bool
}

// NewHeadlessView creates a view with no buffer and the cursor at 1:1
func NewHeadlessView() *HeadlessView {
	return &HeadlessView{cursor: session.Position{Line: 1, Column: 1}}
}

// SetBuffer swaps the shown buffer. The cursor resets, as it does when a
// widget is handed a new model.
func (v *HeadlessView) SetBuffer(buf session.Buffer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buffer = buf
	v.cursor = session.Position{Line: 1, Column: 1}
	v.scrollTop = 0
}

func (v *HeadlessView) Buffer() session.Buffer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buffer
}

func (v *HeadlessView) SaveViewState() json.RawMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	data, err := json.Marshal(ViewState{Cursor: v.cursor, ScrollTop: v.scrollTop})
	if err != nil {
		return nil
	}
	return data
}

// RestoreViewState applies a blob from SaveViewState. Blobs it cannot parse
// are ignored; they may come from a different editor build.
func (v *HeadlessView) RestoreViewState(state json.RawMessage) {
	if len(state) == 0 {
		return
	}
	var vs ViewState
	if err := json.Unmarshal(state, &vs); err != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if vs.Cursor.Line > 0 && vs.Cursor.Column > 0 {
		v.cursor = vs.Cursor
	}
	if vs.ScrollTop >= 0 {
		v.scrollTop = vs.ScrollTop
	}
}

// Reveal moves the cursor to pos and scrolls so its line is at the top
func (v *HeadlessView) Reveal(pos session.Position) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if pos.Line < 1 {
		pos.Line = 1
	}
	if pos.Column < 1 {
		pos.Column = 1
	}
	v.cursor = pos
	v.scrollTop = pos.Line - 1
}

func (v *HeadlessView) Focus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focused = true
}

// Cursor returns the current cursor position
func (v *HeadlessView) Cursor() session.Position {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// ScrollTop returns the first visible line, zero-based
func (v *HeadlessView) ScrollTop() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollTop
}

// Focused reports whether Focus has been called
func (v *HeadlessView) Focused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.focused
}
