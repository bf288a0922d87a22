package session

import "encoding/json"

// MarkerSeverity mirrors the widget's diagnostic levels
type MarkerSeverity int

const (
	SeverityHint    MarkerSeverity = 1
	SeverityInfo    MarkerSeverity = 2
	SeverityWarning MarkerSeverity = 4
	SeverityError   MarkerSeverity = 8
)

// LintOwner is the marker owner used for host lint reports. Its markers are
// cleared whenever a buffer becomes visible.
const LintOwner = "luacheck"

// Marker is a diagnostic attached to a buffer range
type Marker struct {
	Message     string         `json:"message"`
	Severity    MarkerSeverity `json:"severity"`
	StartLine   int            `json:"startLineNumber"`
	StartColumn int            `json:"startColumn"`
	EndLine     int            `json:"endLineNumber"`
	EndColumn   int            `json:"endColumn"`
	Code        string         `json:"code,omitempty"`
}

// Position is a 1-based line/column location
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Buffer is the text model behind a session.
type Buffer interface {
	Value() string
	SetValue(value string)
	Language() string
	SetLanguage(language string)
	// VersionID increases on every content change and is what the host
	// compares to detect stale writes.
	VersionID() int
	SetMarkers(owner string, markers []Marker)
	Markers(owner string) []Marker
	Dispose()
}

// BufferFactory creates the buffer for a new session
type BufferFactory func(value, language string) Buffer

// View is the single visible editor surface. Exactly one buffer is shown at
// a time; the registry swaps buffers in and out as sessions are activated.
type View interface {
	SetBuffer(buf Buffer)
	Buffer() Buffer
	// SaveViewState captures cursor and scroll as an opaque blob.
	SaveViewState() json.RawMessage
	RestoreViewState(state json.RawMessage)
	// Reveal moves the cursor to pos and scrolls it into view.
	Reveal(pos Position)
	Focus()
}
