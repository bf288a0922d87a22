package editor

import (
	"testing"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBufferVersioning(t *testing.T) {
	buf := NewMemoryBuffer("a", "glua")
	assert.Equal(t, 1, buf.VersionID())

	buf.SetValue("b")
	buf.SetValue("b")
	assert.Equal(t, "b", buf.Value())
	assert.Equal(t, 3, buf.VersionID())

	buf.SetLanguage("lua")
	assert.Equal(t, "lua", buf.Language())
	assert.Equal(t, 3, buf.VersionID())
}

func TestMemoryBufferMarkers(t *testing.T) {
	buf := NewMemoryBuffer("", "glua")
	markers := []session.Marker{{Message: "unused variable", Severity: session.SeverityWarning, StartLine: 1, EndLine: 1}}

	buf.SetMarkers(session.LintOwner, markers)
	buf.SetMarkers("other", markers)
	markers[0].Message = "mutated"

	got := buf.Markers(session.LintOwner)
	require.Len(t, got, 1)
	assert.Equal(t, "unused variable", got[0].Message)

	buf.SetMarkers(session.LintOwner, nil)
	assert.Nil(t, buf.Markers(session.LintOwner))
	assert.Len(t, buf.Markers("other"), 1)
}

func TestMemoryBufferDispose(t *testing.T) {
	buf := NewMemoryBuffer("keep", "glua")
	buf.Dispose()

	buf.SetValue("ignored")
	assert.True(t, buf.Disposed())
	assert.Equal(t, "keep", buf.Value())
	assert.Equal(t, 1, buf.VersionID())
}

func TestHeadlessViewStateRoundTrip(t *testing.T) {
	view := NewHeadlessView()
	view.SetBuffer(NewMemoryBuffer("x", "glua"))
	view.Reveal(session.Position{Line: 12, Column: 4})

	state := view.SaveViewState()
	assert.JSONEq(t, `{"cursor":{"line":12,"column":4},"scrollTop":11}`, string(state))

	view.SetBuffer(NewMemoryBuffer("y", "glua"))
	assert.Equal(t, session.Position{Line: 1, Column: 1}, view.Cursor())

	view.RestoreViewState(state)
	assert.Equal(t, session.Position{Line: 12, Column: 4}, view.Cursor())
	assert.Equal(t, 11, view.ScrollTop())
}

func TestHeadlessViewIgnoresForeignState(t *testing.T) {
	view := NewHeadlessView()
	view.Reveal(session.Position{Line: 3, Column: 2})

	view.RestoreViewState([]byte(`not json`))
	view.RestoreViewState(nil)

	assert.Equal(t, session.Position{Line: 3, Column: 2}, view.Cursor())
}

func TestHeadlessViewRevealClamps(t *testing.T) {
	view := NewHeadlessView()
	view.Reveal(session.Position{Line: 0, Column: -5})

	assert.Equal(t, session.Position{Line: 1, Column: 1}, view.Cursor())
	assert.False(t, view.Focused())
	view.Focus()
	assert.True(t, view.Focused())
}

func TestSatisfiesSessionContracts(t *testing.T) {
	var _ session.Buffer = NewMemoryBuffer("", "")
	var _ session.View = NewHeadlessView()
	var _ session.BufferFactory = NewBuffer
}
