package vfs

import (
	"encoding/json"
	"sort"
	"strings"
)

// Node is one segment of the derived tree: a file leaf holding content, or a
// folder holding children keyed by segment name.
type Node struct {
	Name     string
	Content  string
	IsFile   bool
	Children map[string]*Node
}

func newFolder(name string) *Node {
	return &Node{Name: name, Children: make(map[string]*Node)}
}

// Tree derives the folder hierarchy from the current paths. It is rebuilt on
// every call. Paths are applied in sorted order, so when a path is both a
// file and a folder prefix ("a" and "a/b") the folder wins deterministically.
func (fs *FS) Tree() *Node {
	fs.mu.RLock()
	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}
	contents := make(map[string]string, len(fs.files))
	for p, c := range fs.files {
		contents[p] = c
	}
	fs.mu.RUnlock()

	sort.Strings(paths)

	root := newFolder("")
	for _, p := range paths {
		parts := segments(p)
		current := root
		for i, part := range parts {
			if i == len(parts)-1 {
				if existing, ok := current.Children[part]; ok && !existing.IsFile {
					break
				}
				current.Children[part] = &Node{Name: part, Content: contents[p], IsFile: true}
				break
			}
			next, ok := current.Children[part]
			if !ok || next.IsFile {
				next = newFolder(part)
				current.Children[part] = next
			}
			current = next
		}
	}
	return root
}

// Sorted returns the children in display order: folders first, then files,
// each group alphabetical.
func (n *Node) Sorted() []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsFile != b.IsFile {
			return !a.IsFile
		}
		return a.Name < b.Name
	})
	return children
}

// Lookup finds the node at a '/'-separated path relative to n.
func (n *Node) Lookup(path string) (*Node, bool) {
	current := n
	for _, part := range segments(path) {
		if current.IsFile {
			return nil, false
		}
		next, ok := current.Children[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Walk visits every node below n depth-first in display order. fn receives
// the node's path relative to n. Returning false from fn skips the node's
// children.
func (n *Node) Walk(fn func(path string, node *Node) bool) {
	n.walk("", fn)
}

func (n *Node) walk(prefix string, fn func(string, *Node) bool) {
	for _, child := range n.Sorted() {
		path := child.Name
		if prefix != "" {
			path = prefix + "/" + child.Name
		}
		if !fn(path, child) || child.IsFile {
			continue
		}
		child.walk(path, fn)
	}
}

// Files counts the file leaves below n.
func (n *Node) Files() int {
	count := 0
	n.Walk(func(_ string, node *Node) bool {
		if node.IsFile {
			count++
		}
		return true
	})
	return count
}

// MarshalJSON encodes the tree in the host's explorer shape: folders are
// objects keyed by segment, files are their content string.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsFile {
		return json.Marshal(n.Content)
	}
	children := make(map[string]*Node, len(n.Children))
	for name, child := range n.Children {
		children[name] = child
	}
	return json.Marshal(children)
}

// String renders the tree as an indented outline, handy in logs and tests.
func (n *Node) String() string {
	var b strings.Builder
	n.Walk(func(path string, node *Node) bool {
		depth := strings.Count(path, "/")
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(node.Name)
		if !node.IsFile {
			b.WriteString("/")
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}
