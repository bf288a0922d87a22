package session

// EventKind classifies registry notifications
type EventKind int

const (
	// EventFocus fires when a session becomes visible or the visible
	// session is renamed.
	EventFocus EventKind = iota
	// EventUpdate fires after any change to the session set or to a
	// session's serialized fields. Subscribers usually debounce it.
	EventUpdate
	// EventCode fires when the visible buffer's content changes.
	EventCode
)

func (k EventKind) String() string {
	switch k {
	case EventFocus:
		return "focus"
	case EventUpdate:
		return "update"
	case EventCode:
		return "code"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after the operation that produced it
// has released the registry lock.
type Event struct {
	Kind EventKind
	// Session is set for focus events.
	Session Serialized
	// Code and VersionID are set for code events.
	Code      string
	VersionID int
}

// Listener receives registry events in the order they were produced.
// Listeners run without the registry lock, on the goroutine currently
// draining the event queue, which may belong to another operation. A
// listener may call Registry methods; events it causes are delivered
// after the current one.
type Listener func(Event)
