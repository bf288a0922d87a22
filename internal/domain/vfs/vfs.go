package vfs

import (
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// FS is an in-memory path -> content store. Safe for concurrent use.
type FS struct {
	mu    sync.RWMutex
	files map[string]string
}

// New creates an empty filesystem
func New() *FS {
	return &FS{files: make(map[string]string)}
}

// Add inserts or replaces the content stored at path
func (fs *FS) Add(path, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = content
}

// Get returns the content stored at path
func (fs *FS) Get(path string) (string, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	content, ok := fs.files[path]
	return content, ok
}

// Has reports whether path exists
func (fs *FS) Has(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.files[path]
	return ok
}

// Remove deletes path and reports whether it existed
func (fs *FS) Remove(path string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; !ok {
		return false
	}
	delete(fs.files, path)
	return true
}

// Paths returns every stored path in no particular order
func (fs *FS) Paths() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}
	return paths
}

// Clear removes every entry
func (fs *FS) Clear() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files = make(map[string]string)
}

// Size returns the number of stored paths
func (fs *FS) Size() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// Glob returns the sorted paths matching a doublestar pattern. Unlike the
// search panel's include/exclude filters, '*' stops at '/' here and only
// '**' crosses directories. An invalid pattern matches nothing.
func (fs *FS) Glob(pattern string) []string {
	pattern = Normalize(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil
	}

	var matches []string
	for _, p := range fs.Paths() {
		ok, err := doublestar.Match(pattern, Normalize(p))
		if err != nil {
			return nil
		}
		if ok {
			matches = append(matches, p)
		}
	}
	sort.Strings(matches)
	return matches
}

// Normalize converts backslashes to '/' and drops empty segments, so
// "\\lua\\\\init.lua" becomes "lua/init.lua".
func Normalize(path string) string {
	return strings.Join(segments(path), "/")
}

func segments(path string) []string {
	parts := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
