package bridge

import "github.com/A5R13L/gmod-monaco-editor/internal/domain/session"

// Host receives everything the editor reports outward. Calls arrive on the
// goroutine of the operation that caused them, or on the debounce timer
// for OnSessionUpdate, and must not block for long.
type Host interface {
	OnReady()
	OnCode(code string, versionID int)
	OnSessionFocus(s session.Serialized)
	OnSessionUpdate(sessions []session.Serialized)
	OnSessionExported(s session.Serialized, code string)
	OnSessionImported(s session.Serialized, code string)
	OnSessionPublished(s session.Serialized, data session.PublishData)
	OnThemeChanged(theme string)
	OnAction(id string)
	OnExecute(realm, code string)
	OpenURL(url string)
}

// LuaReportEvent is one luacheck finding
type LuaReportEvent struct {
	Message      string `json:"message"`
	IsError      bool   `json:"isError"`
	Line         int    `json:"line"`
	StartColumn  int    `json:"startColumn"`
	EndColumn    int    `json:"endColumn"`
	LuacheckCode string `json:"luacheckCode,omitempty"`
}

// LuaReport is the lint result for the visible buffer
type LuaReport struct {
	Events []LuaReportEvent `json:"events"`
}

func (r LuaReport) markers() []session.Marker {
	markers := make([]session.Marker, 0, len(r.Events))
	for _, e := range r.Events {
		severity := session.SeverityWarning
		if e.IsError {
			severity = session.SeverityError
		}
		markers = append(markers, session.Marker{
			Message:     e.Message,
			Severity:    severity,
			StartLine:   e.Line,
			StartColumn: e.StartColumn,
			EndLine:     e.Line,
			EndColumn:   e.EndColumn,
			Code:        e.LuacheckCode,
		})
	}
	return markers
}

// Problems lists the lint markers of the visible session
type Problems struct {
	Session string           `json:"session"`
	Markers []session.Marker `json:"markers"`
}

// UIState holds the chrome toggles a host can flip
type UIState struct {
	TabBarVisible    bool `json:"tabBarVisible"`
	AllowTabCommands bool `json:"allowTabCommands"`
	SidebarVisible   bool `json:"sidebarVisible"`
}
