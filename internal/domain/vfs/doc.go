// Package vfs provides the in-memory virtual filesystem backing the editor's
// explorer and search panels.
//
// Paths are '/'-segmented virtual locations that need not exist on any real
// disk. Each path holds at most one content string; the last write wins.
// The hierarchical view (Tree) is derived on demand from the flat map and is
// never cached, so it always reflects the latest writes.
//
// Example Usage:
//
//	fs := vfs.New()
//	fs.Add("lua/autorun/init.lua", "print('hi')")
//	tree := fs.Tree()
//	for _, child := range tree.Sorted() { ... }
package vfs
