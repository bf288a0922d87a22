// Package bridge connects the editor state to the embedding host. It turns
// registry events into Host callbacks, debouncing session list updates, and
// exposes the commands a host may issue.
package bridge

import (
	"sync"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/action"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/completion"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/search"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/theme"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/vfs"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"github.com/A5R13L/gmod-monaco-editor/internal/shared/debounce"
	"go.uber.org/zap"
)

// DefaultDebounce is the session update coalescing window
const DefaultDebounce = 10 * time.Millisecond

// Config carries optional collaborators. Nil fields get fresh defaults.
type Config struct {
	Debounce     time.Duration
	MatchTimeout time.Duration
	Themes       *theme.Registry
	Completion   *completion.Store
	Feed         *completion.Feed
	Logger       *zap.Logger
	Metrics      *monitoring.Metrics
}

// Bridge is the single point where editor state meets the host
type Bridge struct {
	host       Host
	sessions   *session.Registry
	fs         *vfs.FS
	search     *search.Engine
	actions    *action.Registry
	themes     *theme.Registry
	completion *completion.Store
	feed       *completion.Feed
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	updates     *debounce.Debouncer
	unsubscribe func()

	uiMu sync.RWMutex
	ui   UIState

	closeOnce sync.Once
}

// New wires a bridge to sessions and fs and starts forwarding events
func New(host Host, sessions *session.Registry, fs *vfs.FS, cfg Config) *Bridge {
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Themes == nil {
		cfg.Themes = theme.NewRegistry()
	}
	if cfg.Completion == nil {
		cfg.Completion = completion.NewStore()
	}
	if fs == nil {
		fs = vfs.New()
	}
	logger := logging.OrNop(cfg.Logger)

	engine := search.NewEngine(sessions, fs, logger.Named("search")).WithMetrics(cfg.Metrics)
	if cfg.MatchTimeout > 0 {
		engine.WithMatchTimeout(cfg.MatchTimeout)
	}

	b := &Bridge{
		host:       host,
		sessions:   sessions,
		fs:         fs,
		search:     engine,
		actions:    action.NewRegistry(),
		themes:     cfg.Themes,
		completion: cfg.Completion,
		feed:       cfg.Feed,
		logger:     logger,
		metrics:    cfg.Metrics,
		ui:         UIState{TabBarVisible: true, SidebarVisible: true},
	}
	b.updates = debounce.New(cfg.Debounce, b.flushUpdate)

	for _, a := range action.Builtins(func(realm string) { b.Execute(realm) }) {
		if err := b.actions.Add(a); err != nil {
			b.logger.Error("Failed to register built-in action", zap.String("id", a.ID), zap.Error(err))
		}
	}

	b.unsubscribe = sessions.Subscribe(b.onEvent)
	return b
}

func (b *Bridge) onEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventFocus:
		b.emit("session_focus", func() { b.host.OnSessionFocus(ev.Session) })
	case session.EventUpdate:
		b.updates.Trigger()
	case session.EventCode:
		b.emit("code", func() { b.host.OnCode(ev.Code, ev.VersionID) })
	}
}

func (b *Bridge) flushUpdate() {
	sessions := b.sessions.Sessions()
	b.emit("session_update", func() { b.host.OnSessionUpdate(sessions) })
}

func (b *Bridge) emit(kind string, fn func()) {
	b.metrics.RecordBridgeEmit(kind)
	fn()
}

// Close sends any pending session update and detaches from the registry
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		b.unsubscribe()
		b.updates.Flush()
		b.updates.Stop()
	})
}

// UpdatePending reports whether a debounced session update is scheduled
func (b *Bridge) UpdatePending() bool {
	return b.updates.Pending()
}

func (b *Bridge) Sessions() *session.Registry   { return b.sessions }
func (b *Bridge) FS() *vfs.FS                   { return b.fs }
func (b *Bridge) Actions() *action.Registry     { return b.actions }
func (b *Bridge) Themes() *theme.Registry       { return b.themes }
func (b *Bridge) Completion() *completion.Store { return b.completion }
