package search

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/vfs"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

// DefaultMatchTimeout bounds a single regex match attempt
const DefaultMatchTimeout = time.Second

// Options describes one search
type Options struct {
	Query           string `json:"query"`
	Regex           bool   `json:"useRegex"`
	MatchCase       bool   `json:"matchCase"`
	WholeWord       bool   `json:"matchWord"`
	Include         string `json:"include"`
	Exclude         string `json:"exclude"`
	OpenEditorsOnly bool   `json:"openEditorsOnly"`
}

func (o Options) mode() string {
	if o.Regex {
		return "regex"
	}
	return "literal"
}

// Workspace is the slice of the session registry search needs
type Workspace interface {
	List() []*session.Session
	Get(name string) (*session.Session, bool)
	RevealSession(name string, pos session.Position) bool
	OpenAt(spec session.Spec, pos session.Position) *session.Session
}

// Engine runs searches over a workspace and a filesystem
type Engine struct {
	workspace    Workspace
	fs           *vfs.FS
	logger       *zap.Logger
	metrics      *monitoring.Metrics
	matchTimeout time.Duration
}

// NewEngine creates a search engine
func NewEngine(workspace Workspace, fs *vfs.FS, logger *zap.Logger) *Engine {
	return &Engine{
		workspace:    workspace,
		fs:           fs,
		logger:       logging.OrNop(logger),
		matchTimeout: DefaultMatchTimeout,
	}
}

// WithMatchTimeout sets the per-match regex timeout
func (e *Engine) WithMatchTimeout(timeout time.Duration) *Engine {
	e.matchTimeout = timeout
	return e
}

// WithMetrics adds metrics tracking to the engine
func (e *Engine) WithMetrics(metrics *monitoring.Metrics) *Engine {
	e.metrics = metrics
	return e
}

// Search returns every match for opts. A blank query, an invalid pattern or
// a cancelled context yields no further results; none of these is an error
// for the caller.
func (e *Engine) Search(ctx context.Context, opts Options) Results {
	start := time.Now()
	results := e.search(ctx, opts)
	e.metrics.ObserveSearch(opts.mode(), time.Since(start), len(results))
	return results
}

func (e *Engine) search(ctx context.Context, opts Options) Results {
	results := Results{}
	if strings.TrimSpace(opts.Query) == "" {
		return results
	}

	re, err := compileQuery(opts, e.matchTimeout)
	if err != nil {
		e.logger.Debug("Discarding search with invalid pattern", zap.Error(err))
		return results
	}
	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		e.logger.Debug("Discarding search with invalid filter", zap.Error(err))
		return results
	}

	open := make(map[string]bool)
	for _, s := range e.workspace.List() {
		path := s.Path()
		open[path] = true

		if ctx.Err() != nil {
			return results
		}
		if !filter.Match(path) {
			continue
		}
		results = e.scan(results, re, path, s.Content(), true, s.Name)
	}

	if opts.OpenEditorsOnly || e.fs == nil {
		return results
	}

	paths := e.fs.Paths()
	sort.Strings(paths)
	for _, path := range paths {
		if ctx.Err() != nil {
			return results
		}
		if open[path] || !filter.Match(path) {
			continue
		}
		content, ok := e.fs.Get(path)
		if !ok || content == "" {
			continue
		}
		results = e.scan(results, re, path, content, false, "")
	}

	return results
}

// scan appends the matches in content. A match timeout drops every result
// for this file.
func (e *Engine) scan(results Results, re *regexp2.Regexp, path, content string, isOpen bool, sessionName string) Results {
	before := len(results)

	for i, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		pos := 0
		for pos <= len(runes) {
			m, err := re.FindRunesMatchStartingAt(runes, pos)
			if err != nil {
				e.logger.Warn("Search timed out scanning file",
					zap.String("file", path),
					zap.Error(err))
				return results[:before]
			}
			if m == nil {
				break
			}

			results = append(results, Result{
				File:         path,
				Line:         i + 1,
				Column:       m.Index + 1,
				Match:        m.String(),
				LineContent:  line,
				IsOpenEditor: isOpen,
				SessionName:  sessionName,
			})

			next := m.Index + m.Length
			if m.Length == 0 {
				next++
			}
			pos = next
		}
	}

	return results
}

// ErrStaleResult means the file behind a result is gone
var ErrStaleResult = errors.New("search result no longer resolves to a file")

// Activate opens a result in the editor. Matches in open sessions reveal
// that session; VFS matches open the file as a new focused session named
// after its last path segment and reveal the match once the buffer is
// ready.
func (e *Engine) Activate(res Result) error {
	pos := session.Position{Line: res.Line, Column: res.Column}

	if res.IsOpenEditor {
		name := res.SessionName
		if name == "" {
			name = e.sessionForPath(res.File)
		}
		if name == "" || !e.workspace.RevealSession(name, pos) {
			return ErrStaleResult
		}
		return nil
	}

	if e.fs == nil {
		return ErrStaleResult
	}
	content, ok := e.fs.Get(res.File)
	if !ok || content == "" {
		return ErrStaleResult
	}

	e.workspace.OpenAt(session.Spec{
		Name:      e.nameForFile(res.File),
		Code:      content,
		File:      res.File,
		Language:  session.DefaultLanguage,
		IsFocused: true,
	}, pos)
	return nil
}

func (e *Engine) sessionForPath(path string) string {
	for _, s := range e.workspace.List() {
		if s.Path() == path {
			return s.Name
		}
	}
	return ""
}

// nameForFile uses the last path segment unless a session bound to a
// different file already holds it, in which case the full path is used so
// the open would not overwrite that session.
func (e *Engine) nameForFile(file string) string {
	name := file
	if i := strings.LastIndex(file, "/"); i >= 0 {
		name = file[i+1:]
	}
	if name == "" {
		name = "untitled"
	}
	if existing, ok := e.workspace.Get(name); ok && existing.File != file {
		return file
	}
	return name
}
