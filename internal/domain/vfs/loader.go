package vfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxFileSize caps seeded files at 1 MiB
const DefaultMaxFileSize int64 = 1 << 20

// LoadOptions controls how LoadDir seeds a filesystem from disk
type LoadOptions struct {
	// Patterns are doublestar include patterns matched against the
	// slash-separated path relative to root. Empty means "**/*".
	Patterns []string
	// MaxFileSize skips larger files. Zero uses DefaultMaxFileSize.
	MaxFileSize int64
	// Prefix is prepended to every virtual path.
	Prefix string
}

// LoadDir copies the text files under root into fs and returns how many were
// added. Hidden directories are skipped, as are binary files according to
// their sniffed MIME type.
func LoadDir(ctx context.Context, fs *FS, root string, opts LoadOptions) (int, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"**/*"}
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return 0, fmt.Errorf("invalid seed pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("failed to stat seed dir: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("seed path %s is not a directory", root)
	}

	var added atomic.Int64
	conf := fastwalk.Config{Follow: false}

	err = fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(patterns, rel) {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil || fi.Size() > maxSize {
			return nil
		}

		if !isText(p) {
			return nil
		}

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return nil
		}

		fs.Add(joinPrefix(opts.Prefix, rel), string(data))
		added.Add(1)
		return nil
	})
	if err != nil {
		return int(added.Load()), fmt.Errorf("failed to walk seed dir: %w", err)
	}

	return int(added.Load()), nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// isText walks the detected type's ancestry looking for text/plain, which
// covers source files such as Lua, JSON and XML.
func isText(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func joinPrefix(prefix, rel string) string {
	prefix = Normalize(prefix)
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}
