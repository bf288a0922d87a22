// Package testutil provides shared mocks and fixtures for editor tests.
package testutil

import (
	"testing"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/editor"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// MockHost is a mock implementation of bridge.Host.
type MockHost struct {
	mock.Mock
}

func (m *MockHost) OnReady() {
	m.Called()
}

func (m *MockHost) OnCode(code string, versionID int) {
	m.Called(code, versionID)
}

func (m *MockHost) OnSessionFocus(s session.Serialized) {
	m.Called(s)
}

func (m *MockHost) OnSessionUpdate(sessions []session.Serialized) {
	m.Called(sessions)
}

func (m *MockHost) OnSessionExported(s session.Serialized, code string) {
	m.Called(s, code)
}

func (m *MockHost) OnSessionImported(s session.Serialized, code string) {
	m.Called(s, code)
}

func (m *MockHost) OnSessionPublished(s session.Serialized, data session.PublishData) {
	m.Called(s, data)
}

func (m *MockHost) OnThemeChanged(theme string) {
	m.Called(theme)
}

func (m *MockHost) OnAction(id string) {
	m.Called(id)
}

func (m *MockHost) OnExecute(realm, code string) {
	m.Called(realm, code)
}

func (m *MockHost) OpenURL(url string) {
	m.Called(url)
}

// NewMockHost creates a host mock that accepts every callback. Tests assert
// on the calls they care about with AssertCalled / AssertNumberOfCalls.
func NewMockHost(t *testing.T) *MockHost {
	t.Helper()
	m := new(MockHost)

	m.On("OnReady").Maybe()
	m.On("OnCode", mock.Anything, mock.Anything).Maybe()
	m.On("OnSessionFocus", mock.Anything).Maybe()
	m.On("OnSessionUpdate", mock.Anything).Maybe()
	m.On("OnSessionExported", mock.Anything, mock.Anything).Maybe()
	m.On("OnSessionImported", mock.Anything, mock.Anything).Maybe()
	m.On("OnSessionPublished", mock.Anything, mock.Anything).Maybe()
	m.On("OnThemeChanged", mock.Anything).Maybe()
	m.On("OnAction", mock.Anything).Maybe()
	m.On("OnExecute", mock.Anything, mock.Anything).Maybe()
	m.On("OpenURL", mock.Anything).Maybe()

	return m
}

// Calls returns the recorded calls of one method.
func (m *MockHost) Calls(method string) []mock.Call {
	m.Lock()
	defer m.Unlock()

	var calls []mock.Call
	for _, c := range m.Mock.Calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// NewTestRegistry creates a session registry backed by a headless view.
// Reveals happen immediately.
func NewTestRegistry(t *testing.T, opts ...session.Option) (*session.Registry, *editor.HeadlessView) {
	t.Helper()

	view := editor.NewHeadlessView()
	opts = append([]session.Option{session.WithRevealDelay(0)}, opts...)
	reg := session.NewRegistry(view, editor.NewBuffer, opts...)
	t.Cleanup(reg.Close)
	return reg, view
}
