package editor

import (
	"sync"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
)

// MemoryBuffer is an in-memory text model
type MemoryBuffer struct {
	mu       sync.RWMutex
	value    string
	language string
	version  int
	markers  map[string][]session.Marker
	disposed bool
}

// NewBuffer creates a buffer. It satisfies session.BufferFactory.
func NewBuffer(value, language string) session.Buffer {
	return NewMemoryBuffer(value, language)
}

// NewMemoryBuffer creates a buffer holding value at version 1
func NewMemoryBuffer(value, language string) *MemoryBuffer {
	return &MemoryBuffer{
		value:    value,
		language: language,
		version:  1,
		markers:  make(map[string][]session.Marker),
	}
}

func (b *MemoryBuffer) Value() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// SetValue replaces the content. Writing the current value again still
// counts as an edit and bumps the version.
func (b *MemoryBuffer) SetValue(value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return
	}
	b.value = value
	b.version++
}

func (b *MemoryBuffer) Language() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.language
}

func (b *MemoryBuffer) SetLanguage(language string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.language = language
}

func (b *MemoryBuffer) VersionID() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// SetMarkers replaces owner's markers; an empty slice clears them.
func (b *MemoryBuffer) SetMarkers(owner string, markers []session.Marker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(markers) == 0 {
		delete(b.markers, owner)
		return
	}
	cp := make([]session.Marker, len(markers))
	copy(cp, markers)
	b.markers[owner] = cp
}

func (b *MemoryBuffer) Markers(owner string) []session.Marker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	markers := b.markers[owner]
	if len(markers) == 0 {
		return nil
	}
	cp := make([]session.Marker, len(markers))
	copy(cp, markers)
	return cp
}

// Dispose releases the buffer. Later writes are ignored.
func (b *MemoryBuffer) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disposed = true
	b.markers = make(map[string][]session.Marker)
}

// Disposed reports whether Dispose was called
func (b *MemoryBuffer) Disposed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.disposed
}
