package session

import (
	"strings"
	"sync"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// DefaultRevealDelay gives a freshly opened buffer time to attach before the
// cursor is moved.
const DefaultRevealDelay = 100 * time.Millisecond

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for caller mistakes
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logging.OrNop(logger)
	}
}

// WithHistorySize sets how many closed sessions are kept for reopening
func WithHistorySize(size int) Option {
	return func(r *Registry) {
		r.history = NewHistory(size)
	}
}

// WithRevealDelay sets the delay between OpenAt and the cursor reveal
func WithRevealDelay(delay time.Duration) Option {
	return func(r *Registry) {
		r.revealDelay = delay
	}
}

// WithMetrics enables session metrics
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(r *Registry) {
		r.metrics = metrics
	}
}

type listenerEntry struct {
	id uint64
	fn Listener
}

type pendingReveal struct {
	session *Session
	pos     Position
	timer   *time.Timer
	gen     uint64
}

// Registry is the set of open sessions
type Registry struct {
	mu sync.Mutex

	view      View
	newBuffer BufferFactory
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	order   []*Session          // Protected by mu
	byName  map[string]*Session // Protected by mu
	active  *Session            // Protected by mu
	last    *Session            // Protected by mu
	history *History            // Protected by mu

	revealDelay time.Duration
	reveal      *pendingReveal // Protected by mu
	revealGen   uint64         // Protected by mu

	listeners    []listenerEntry // Protected by mu
	nextListener uint64          // Protected by mu
	queue        []Event         // Protected by mu
	dispatching  bool            // Protected by mu
}

// NewRegistry creates an empty registry that shows buffers in view and
// creates them with factory.
func NewRegistry(view View, factory BufferFactory, opts ...Option) *Registry {
	r := &Registry{
		view:        view,
		newBuffer:   factory,
		logger:      zap.NewNop(),
		byName:      make(map[string]*Session),
		history:     NewHistory(DefaultHistorySize),
		revealDelay: DefaultRevealDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers fn for every subsequent event. The returned func
// removes it and is safe to call more than once.
func (r *Registry) Subscribe(fn Listener) func() {
	r.mu.Lock()
	r.nextListener++
	lid := r.nextListener
	r.listeners = append(r.listeners, listenerEntry{id: lid, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, l := range r.listeners {
				if l.id == lid {
					r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// apply runs fn under the lock and queues its events. Whichever caller
// finds no delivery in progress drains the queue with mu released, so
// listeners may call back into the registry and events of consecutive
// operations still arrive in order.
func (r *Registry) apply(op string, fn func() bool) bool {
	r.mu.Lock()
	ok := fn()
	count := len(r.order)
	drain := !r.dispatching
	if drain {
		r.dispatching = true
	}
	r.mu.Unlock()

	r.metrics.RecordSessionOp(op, ok)
	r.metrics.SetSessionsActive(count)

	if drain {
		r.drain()
	}
	return ok
}

// drain delivers queued events until the queue is empty
func (r *Registry) drain() {
	r.mu.Lock()
	defer func() {
		r.dispatching = false
		r.mu.Unlock()
	}()

	for len(r.queue) > 0 {
		ev := r.queue[0]
		r.queue = r.queue[1:]
		listeners := make([]Listener, len(r.listeners))
		for i, l := range r.listeners {
			listeners[i] = l.fn
		}

		r.mu.Unlock()
		func() {
			defer r.mu.Lock()
			for _, fn := range listeners {
				fn(ev)
			}
		}()
	}
}

func (r *Registry) emitUpdate() {
	r.queue = append(r.queue, Event{Kind: EventUpdate})
}

func (r *Registry) emitFocus(s *Session) {
	r.queue = append(r.queue, Event{Kind: EventFocus, Session: s.Serialize()})
}

func (r *Registry) emitCode(s *Session) {
	r.queue = append(r.queue, Event{
		Kind:      EventCode,
		Code:      s.buffer.Value(),
		VersionID: s.buffer.VersionID(),
	})
}

// CreateSession creates a session, or updates the existing one when the
// name is already taken. A blank name is replaced with the next free
// "Tab #N". On update only non-empty code, language and view state are
// applied; the session keeps its identity and position.
func (r *Registry) CreateSession(spec Spec) *Session {
	var created *Session
	r.apply("create", func() bool {
		created = r.createLocked(spec).snapshot()
		return true
	})
	return created
}

// CreateNewSession creates a blank focused session
func (r *Registry) CreateNewSession() *Session {
	return r.CreateSession(Spec{IsFocused: true})
}

func (r *Registry) createLocked(spec Spec) *Session {
	if strings.TrimSpace(spec.Name) == "" {
		spec.Name = r.nextNameLocked()
	}

	if s, ok := r.byName[spec.Name]; ok {
		if spec.Code != "" {
			s.setCode(spec.Code)
			if s == r.active {
				r.emitCode(s)
			}
		}
		if spec.Language != "" {
			s.Language = spec.Language
			s.buffer.SetLanguage(spec.Language)
		}
		if spec.ViewState != nil {
			s.ViewState = cloneRaw(spec.ViewState)
			if s.IsFocused {
				r.view.RestoreViewState(s.ViewState)
			}
		}
		r.emitUpdate()
		return s
	}

	s := newSession(spec, r.newBuffer)
	r.byName[s.Name] = s
	r.order = append(r.order, s)

	if spec.IsFocused {
		r.activateLocked(s.Name)
	}

	r.emitUpdate()
	return s
}

// SetActiveSession makes name the visible session. Activating the already
// active session does nothing and emits nothing.
func (r *Registry) SetActiveSession(name string) bool {
	return r.apply("activate", func() bool {
		return r.activateLocked(name)
	})
}

func (r *Registry) activateLocked(name string) bool {
	s, ok := r.byName[name]
	if !ok {
		r.logger.Warn("Cannot find session to activate", zap.String("name", name))
		return false
	}
	if r.active == s {
		return true
	}

	if cur := r.active; cur != nil {
		cur.ViewState = r.view.SaveViewState()
		cur.IsFocused = false
		r.last = cur
	}

	r.view.SetBuffer(s.buffer)
	s.buffer.SetMarkers(LintOwner, nil)
	if s.ViewState != nil {
		r.view.RestoreViewState(s.ViewState)
	}

	s.IsFocused = true
	r.active = s

	r.emitFocus(s)
	r.emitUpdate()
	return true
}

// CloseSession closes name, or the active session when name is empty. If
// the active session is closed, switchTo is activated when given, else the
// most recently inserted remaining session, else a blank session is
// created. An unknown name or switchTo aborts without changes.
func (r *Registry) CloseSession(name, switchTo string) bool {
	return r.apply("close", func() bool {
		return r.closeLocked(name, switchTo)
	})
}

func (r *Registry) closeLocked(name, switchTo string) bool {
	var s *Session
	if name == "" {
		s = r.active
		if s == nil {
			r.logger.Warn("No active session to close")
			return false
		}
	} else {
		var ok bool
		if s, ok = r.byName[name]; !ok {
			r.logger.Warn("Cannot close session, it does not exist", zap.String("name", name))
			return false
		}
	}

	if switchTo != "" {
		if target, ok := r.byName[switchTo]; !ok || target == s {
			r.logger.Warn("Cannot close session, switch target does not exist",
				zap.String("name", s.Name),
				zap.String("switch_to", switchTo))
			return false
		}
	}

	if s == r.active {
		s.ViewState = r.view.SaveViewState()
	}
	r.history.Push(s.Serialize())

	r.removeLocked(s)
	r.cancelRevealLocked(s)
	if r.last == s {
		r.last = nil
	}

	if s == r.active {
		r.active = nil

		if switchTo != "" {
			r.activateLocked(switchTo)
		}
		if r.active == nil {
			if n := len(r.order); n > 0 {
				r.activateLocked(r.order[n-1].Name)
			} else {
				r.createLocked(Spec{IsFocused: true})
			}
		}
	} else {
		r.emitUpdate()
	}

	s.buffer.Dispose()
	return true
}

func (r *Registry) removeLocked(s *Session) {
	delete(r.byName, s.Name)
	for i, cur := range r.order {
		if cur == s {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// CloseCurrentSession closes the active session and moves to its left
// neighbour, or its right one when it is first.
func (r *Registry) CloseCurrentSession() bool {
	return r.apply("close", func() bool {
		if r.active == nil {
			return false
		}

		idx := r.indexLocked(r.active)
		next := ""
		if len(r.order) > 1 {
			if idx > 0 {
				next = r.order[idx-1].Name
			} else if idx < len(r.order)-1 {
				next = r.order[idx+1].Name
			}
		}
		return r.closeLocked(r.active.Name, next)
	})
}

// CloseSessions disposes every session and leaves the registry empty. It is
// the first half of a bulk replace; see LoadSessions.
func (r *Registry) CloseSessions() {
	r.apply("close_all", func() bool {
		r.closeAllLocked()
		return true
	})
}

func (r *Registry) closeAllLocked() {
	for _, s := range r.order {
		s.buffer.Dispose()
	}
	r.order = nil
	r.byName = make(map[string]*Session)
	r.active = nil
	r.last = nil
	r.cancelRevealLocked(nil)
	r.view.SetBuffer(nil)
	r.emitUpdate()
}

// LoadSessions replaces every session with list and activates active, or
// the first focused entry, or the first entry. An empty list leaves one
// blank session.
func (r *Registry) LoadSessions(list []Spec, active string) {
	r.apply("load", func() bool {
		r.closeAllLocked()

		for _, spec := range list {
			spec.IsFocused = false
			r.createLocked(spec)
		}

		switch {
		case active != "" && r.activateLocked(active):
		default:
			for _, spec := range list {
				if spec.IsFocused && spec.Name != "" && r.activateLocked(spec.Name) {
					return true
				}
			}
			if len(r.order) > 0 {
				r.activateLocked(r.order[0].Name)
			} else {
				r.createLocked(Spec{IsFocused: true})
			}
		}
		return true
	})
}

// RenameSession renames oldName, or the active session when oldName is
// empty. The session keeps its position. Renaming onto a name held by a
// different session fails without changes.
func (r *Registry) RenameSession(newName, oldName string) bool {
	return r.apply("rename", func() bool {
		var s *Session
		if oldName == "" {
			s = r.active
		} else {
			s = r.byName[oldName]
		}
		if s == nil {
			r.logger.Warn("Cannot find session to rename", zap.String("name", oldName))
			return false
		}
		if strings.TrimSpace(newName) == "" {
			r.logger.Warn("Cannot rename session to a blank name", zap.String("name", s.Name))
			return false
		}
		if other, ok := r.byName[newName]; ok && other != s {
			r.logger.Warn("Cannot rename session, name already taken",
				zap.String("name", s.Name),
				zap.String("new_name", newName))
			return false
		}

		delete(r.byName, s.Name)
		s.Name = newName
		r.byName[newName] = s

		if s == r.active {
			r.emitFocus(s)
		}
		r.emitUpdate()
		return true
	})
}

// ReorderSessions moves the named sessions to the front in the given order.
// Unknown names are ignored and unmentioned sessions keep their relative
// order after them.
func (r *Registry) ReorderSessions(names []string) {
	r.apply("reorder", func() bool {
		seen := make(map[*Session]bool, len(r.order))
		order := make([]*Session, 0, len(r.order))

		for _, name := range names {
			if s, ok := r.byName[name]; ok && !seen[s] {
				seen[s] = true
				order = append(order, s)
			}
		}
		for _, s := range r.order {
			if !seen[s] {
				order = append(order, s)
			}
		}

		r.order = order
		r.emitUpdate()
		return true
	})
}

// ReopenLastClosedSession recreates the most recently closed session and
// focuses it. A name now taken by a live session is replaced with the next
// free "Tab #N".
func (r *Registry) ReopenLastClosedSession() bool {
	_, ok := r.ReopenSession()
	return ok
}

// ReopenSession is ReopenLastClosedSession returning the reopened session
// as it was at the end of the operation
func (r *Registry) ReopenSession() (Serialized, bool) {
	var reopened Serialized
	ok := r.apply("reopen", func() bool {
		snap, ok := r.history.Pop()
		if !ok {
			return false
		}

		spec := snap.Spec()
		if _, taken := r.byName[spec.Name]; taken {
			spec.Name = r.nextNameLocked()
		}
		spec.IsFocused = true
		reopened = r.createLocked(spec).Serialize()
		return true
	})
	return reopened, ok
}

// SwitchToLastSession activates the previously visible session if it is
// still open.
func (r *Registry) SwitchToLastSession() bool {
	return r.apply("switch_last", func() bool {
		last := r.last
		if last == nil || r.byName[last.Name] != last {
			return false
		}
		return r.activateLocked(last.Name)
	})
}

// NextSessionName returns the smallest free "Tab #N"
func (r *Registry) NextSessionName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextNameLocked()
}

func (r *Registry) nextNameLocked() string {
	return nextFreeName(func(name string) bool {
		_, ok := r.byName[name]
		return ok
	})
}

// SetSessionCode replaces the content of name
func (r *Registry) SetSessionCode(name, code string) bool {
	return r.apply("set_code", func() bool {
		s, ok := r.byName[name]
		if !ok {
			r.logger.Warn("Cannot set code for session, it does not exist", zap.String("name", name))
			return false
		}

		s.setCode(code)
		if s == r.active {
			r.emitCode(s)
		}
		r.emitUpdate()
		return true
	})
}

// ApplyEdit replaces the content of the visible session, as typing in the
// editor would.
func (r *Registry) ApplyEdit(code string) bool {
	return r.SetCode(code, false)
}

// SetCode replaces the visible session's content, optionally keeping the
// cursor and scroll position.
func (r *Registry) SetCode(code string, keepViewState bool) bool {
	return r.apply("edit", func() bool {
		s := r.active
		if s == nil {
			r.logger.Warn("No active session to edit")
			return false
		}

		state := r.view.SaveViewState()
		s.setCode(code)
		if keepViewState {
			r.view.RestoreViewState(state)
		}

		r.emitCode(s)
		r.emitUpdate()
		return true
	})
}

// SetLanguage changes the visible session's language
func (r *Registry) SetLanguage(language string) bool {
	return r.apply("set_language", func() bool {
		s := r.active
		if s == nil || language == "" {
			r.logger.Warn("Cannot set language", zap.String("language", language))
			return false
		}

		s.Language = language
		s.buffer.SetLanguage(language)
		r.emitUpdate()
		return true
	})
}

// SetPublishData merges data into the active session's publish metadata
func (r *Registry) SetPublishData(data PublishData) bool {
	return r.apply("publish_data", func() bool {
		s := r.active
		if s == nil {
			r.logger.Warn("No active session to set publish data on")
			return false
		}

		if s.PublishData == nil {
			s.PublishData = &PublishData{}
		}
		s.PublishData.Merge(data)
		return true
	})
}

// SetMarkers replaces the active buffer's markers for owner
func (r *Registry) SetMarkers(owner string, markers []Marker) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		r.logger.Warn("No active session to attach markers to", zap.String("owner", owner))
		return false
	}
	r.active.buffer.SetMarkers(owner, markers)
	return true
}

// Markers returns the active session's name and its markers for owner.
// The name is empty when no session is active.
func (r *Registry) Markers(owner string) (string, []Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return "", nil
	}
	return r.active.Name, r.active.buffer.Markers(owner)
}

// RevealSession activates name (the active session when empty) and moves
// the cursor to pos.
func (r *Registry) RevealSession(name string, pos Position) bool {
	return r.apply("reveal", func() bool {
		if name == "" {
			if r.active == nil {
				r.logger.Warn("No active session to reveal")
				return false
			}
			name = r.active.Name
		}
		if !r.activateLocked(name) {
			return false
		}
		r.view.Reveal(pos)
		r.view.Focus()
		return true
	})
}

// OpenAt creates or updates a session from spec, focuses it and reveals pos
// once the buffer has had RevealDelay to attach. A later OpenAt replaces
// the pending reveal; closing the session cancels it; a reveal whose
// session is no longer active is dropped.
func (r *Registry) OpenAt(spec Spec, pos Position) *Session {
	var opened *Session
	r.apply("open", func() bool {
		spec.IsFocused = true
		s := r.createLocked(spec)
		r.activateLocked(s.Name)
		r.scheduleRevealLocked(s, pos)
		opened = s.snapshot()
		return true
	})
	return opened
}

func (r *Registry) scheduleRevealLocked(s *Session, pos Position) {
	r.cancelRevealLocked(nil)

	if r.revealDelay <= 0 {
		r.view.Reveal(pos)
		r.view.Focus()
		return
	}

	r.revealGen++
	gen := r.revealGen
	p := &pendingReveal{session: s, pos: pos, gen: gen}
	p.timer = time.AfterFunc(r.revealDelay, func() { r.fireReveal(gen) })
	r.reveal = p
}

// cancelRevealLocked stops the pending reveal for s, or any pending reveal
// when s is nil.
func (r *Registry) cancelRevealLocked(s *Session) {
	if r.reveal == nil || (s != nil && r.reveal.session != s) {
		return
	}
	r.reveal.timer.Stop()
	r.reveal = nil
}

func (r *Registry) fireReveal(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.reveal
	if p == nil || p.gen != gen {
		return
	}
	r.reveal = nil

	if r.active != p.session {
		r.logger.Debug("Dropping reveal for inactive session", zap.String("name", p.session.Name))
		return
	}
	r.view.Reveal(p.pos)
	r.view.Focus()
}

// RevealPending reports whether an OpenAt reveal is still scheduled
func (r *Registry) RevealPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reveal != nil
}

// Close cancels timers owned by the registry
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelRevealLocked(nil)
}

// Sessions serializes every session in tab order
func (r *Registry) Sessions() []Serialized {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Serialized, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, s.Serialize())
	}
	return out
}

// List returns copies of every session in tab order
func (r *Registry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, s.snapshot())
	}
	return out
}

// Get returns a copy of the named session
func (r *Registry) Get(name string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return s.snapshot(), true
}

// Active returns a copy of the visible session
func (r *Registry) Active() (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil, false
	}
	return r.active.snapshot(), true
}

// Names returns session names in tab order
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.order))
	for i, s := range r.order {
		names[i] = s.Name
	}
	return names
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// ClosedHistory returns the reopenable snapshots, oldest first
func (r *Registry) ClosedHistory() []Serialized {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Entries()
}

func (r *Registry) indexLocked(s *Session) int {
	for i, cur := range r.order {
		if cur == s {
			return i
		}
	}
	return -1
}
