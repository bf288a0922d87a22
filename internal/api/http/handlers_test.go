package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/bridge"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/search"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/vfs"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"github.com/A5R13L/gmod-monaco-editor/tests/helpers/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	bridge *bridge.Bridge
	host   *testutil.MockHost
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	host := testutil.NewMockHost(t)
	reg, _ := testutil.NewTestRegistry(t)
	metrics := monitoring.NewMetrics()
	t.Cleanup(metrics.Close)

	b := bridge.New(host, reg, vfs.New(), bridge.Config{Debounce: time.Hour, Metrics: metrics})
	t.Cleanup(b.Close)

	router := gin.New()
	NewHandlers(b, metrics, logging.NewNop().Component("http")).Register(router)
	return &testServer{router: router, bridge: b, host: host}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(0), body["sessions"])
}

func TestSessionLifecycle(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created session.Serialized
	decode(t, w, &created)
	assert.Equal(t, "Tab #1", created.Name)

	w = s.do(http.MethodPost, "/sessions", session.Spec{Name: "init.lua", Code: "print(1)"})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/sessions/init.lua/focus", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/sessions/missing/focus", nil).Code)

	w = s.do(http.MethodGet, "/sessions", nil)
	var list struct {
		Sessions []session.Serialized `json:"sessions"`
		Active   string               `json:"active"`
		Next     string               `json:"next"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Sessions, 2)
	assert.Equal(t, "init.lua", list.Active)
	assert.Equal(t, "Tab #2", list.Next)

	w = s.do(http.MethodGet, "/sessions/init.lua", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var one session.Serialized
	decode(t, w, &one)
	assert.Equal(t, "print(1)", one.Code)
	assert.True(t, one.IsFocused)
}

func TestRenameSession(t *testing.T) {
	s := setupServer(t)
	s.bridge.CreateSession(session.Spec{Name: "a", IsFocused: true})
	s.bridge.CreateSession(session.Spec{Name: "b"})

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"success", "/sessions/a/name", renameRequest{Name: "c"}, http.StatusNoContent},
		{"missing session", "/sessions/zzz/name", renameRequest{Name: "d"}, http.StatusNotFound},
		{"taken name", "/sessions/c/name", renameRequest{Name: "b"}, http.StatusConflict},
		{"no name", "/sessions/c/name", map[string]string{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, s.do(http.MethodPut, tt.path, tt.body).Code)
		})
	}
	assert.Equal(t, []string{"c", "b"}, s.bridge.Sessions().Names())
}

func TestCloseAndReopen(t *testing.T) {
	s := setupServer(t)
	s.bridge.CreateSession(session.Spec{Name: "a", IsFocused: true})
	s.bridge.CreateSession(session.Spec{Name: "b"})

	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, "/sessions/a?switchTo=nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/sessions/nope", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/sessions/a?switchTo=b", nil).Code)
	assert.Equal(t, []string{"b"}, s.bridge.Sessions().Names())

	w := s.do(http.MethodPost, "/sessions/reopen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reopened session.Serialized
	decode(t, w, &reopened)
	assert.Equal(t, "a", reopened.Name)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/sessions/reopen", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/sessions/last", nil).Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/sessions", nil).Code)
	assert.Equal(t, 0, s.bridge.Sessions().Len())
}

func TestReorderLoadAndCode(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPut, "/sessions", loadRequest{
		Sessions: []session.Spec{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Active:   "b",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/sessions/order", orderRequest{Names: []string{"c", "a"}})
	require.Equal(t, http.StatusOK, w.Code)
	var order struct {
		Names []string `json:"names"`
	}
	decode(t, w, &order)
	assert.Equal(t, []string{"c", "a", "b"}, order.Names)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/sessions/b/code", codeRequest{Code: "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/sessions/z/code", codeRequest{Code: "x"}).Code)
	s.host.AssertCalled(t, "OnCode", "x", mock.Anything)
}

func TestFilesAndSearchRoutes(t *testing.T) {
	s := setupServer(t)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/vfs/files/lua/autorun/init.lua", fileRequest{Content: "print('x')"}).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/vfs/files/README.txt", fileRequest{Content: "docs"}).Code)

	w := s.do(http.MethodGet, "/vfs/files", nil)
	var files struct {
		Files []string `json:"files"`
	}
	decode(t, w, &files)
	assert.Equal(t, []string{"README.txt", "lua/autorun/init.lua"}, files.Files)

	w = s.do(http.MethodGet, "/vfs/files?glob=**/*.lua", nil)
	decode(t, w, &files)
	assert.Equal(t, []string{"lua/autorun/init.lua"}, files.Files)

	w = s.do(http.MethodGet, "/vfs/files/lua/autorun/init.lua", nil)
	assert.JSONEq(t, `{"content": "print('x')"}`, w.Body.String())

	w = s.do(http.MethodGet, "/vfs/tree", nil)
	assert.JSONEq(t, `{"README.txt": "docs", "lua": {"autorun": {"init.lua": "print('x')"}}}`, w.Body.String())

	w = s.do(http.MethodPost, "/search", search.Options{Query: "print"})
	require.Equal(t, http.StatusOK, w.Code)
	var found struct {
		Results []search.Result `json:"results"`
		Count   int             `json:"count"`
	}
	decode(t, w, &found)
	require.Equal(t, 1, found.Count)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/search/open", found.Results[0]).Code)
	active, ok := s.bridge.Sessions().Active()
	require.True(t, ok)
	assert.Equal(t, "init.lua", active.Name)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/vfs/files/lua/autorun/init.lua", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/vfs/files/lua/autorun/init.lua", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/vfs/files/gone.lua", nil).Code)

	stale := search.Result{File: "gone.lua", Line: 1, Column: 1}
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/search/open", stale).Code)
}

func TestThemesActionsCompletion(t *testing.T) {
	s := setupServer(t)
	s.bridge.CreateSession(session.Spec{Name: "a", Code: "print(1)", IsFocused: true})

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/themes/current", themeRequest{ID: "hc-black"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/themes/current", themeRequest{ID: "nope"}).Code)
	s.host.AssertCalled(t, "OnThemeChanged", "hc-black")

	w := s.do(http.MethodGet, "/themes", nil)
	var themes struct {
		Current string `json:"current"`
	}
	decode(t, w, &themes)
	assert.Equal(t, "hc-black", themes.Current)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/actions/editor.command.execute_client/trigger", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/actions/nope/trigger", nil).Code)
	s.host.AssertCalled(t, "OnExecute", "client", "print(1)")

	w = s.do(http.MethodGet, "/actions", nil)
	assert.Contains(t, w.Body.String(), "editor.command.execute_menu")

	s.bridge.AddSnippet("x", "y")
	w = s.do(http.MethodGet, "/completion", nil)
	assert.Contains(t, w.Body.String(), `"snippets":[{"name":"x","code":"y"}]`)
}

func TestProblemsRoutes(t *testing.T) {
	s := setupServer(t)
	s.bridge.CreateSession(session.Spec{Name: "a", Code: "x = 1\ny = 2", IsFocused: true})
	s.bridge.CreateSession(session.Spec{Name: "b"})
	require.True(t, s.bridge.SubmitLuaReport(bridge.LuaReport{Events: []bridge.LuaReportEvent{
		{Message: "setting non-standard global variable", Line: 2, StartColumn: 1, EndColumn: 1, LuacheckCode: "111"},
	}}))

	w := s.do(http.MethodGet, "/problems", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var problems bridge.Problems
	decode(t, w, &problems)
	assert.Equal(t, "a", problems.Session)
	require.Len(t, problems.Markers, 1)
	assert.Equal(t, "111", problems.Markers[0].Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/problems/0/goto", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/problems/5/goto", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/problems/first/goto", nil).Code)

	require.True(t, s.bridge.SetActiveSession("b"))
	assert.JSONEq(t, `{"session":"b","markers":[]}`, s.do(http.MethodGet, "/problems", nil).Body.String())
}

func TestStreamLogs(t *testing.T) {
	s := setupServer(t)

	ok := s.do(http.MethodPost, "/logs", UILogStreamRequest{Entries: []UILogEntry{
		{Level: "error", Message: "monaco failed", Context: map[string]interface{}{"line": 3}},
		{Level: "info", Message: "ready"},
	}})
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"entries_processed": 2}`, ok.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/logs", UILogStreamRequest{}).Code)

	big := UILogStreamRequest{Entries: make([]UILogEntry, maxLogBatch+1)}
	assert.Equal(t, http.StatusRequestEntityTooLarge, s.do(http.MethodPost, "/logs", big).Code)
}

func TestArchiveRoutes(t *testing.T) {
	src := setupServer(t)
	require.NoError(t, src.bridge.AddFile("lua/init.lua", "print(1)"))
	require.NoError(t, src.bridge.AddFile("notes.txt", "n"))

	w := src.do(http.MethodGet, "/vfs/archive?compression=zstd", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zstd", w.Header().Get("Content-Type"))
	assert.Equal(t, "2", w.Header().Get("X-File-Count"))

	dst := setupServer(t)
	req := httptest.NewRequest(http.MethodPut, "/vfs/archive", bytes.NewReader(w.Body.Bytes()))
	rec := httptest.NewRecorder()
	dst.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added": 2}`, rec.Body.String())
	assert.Equal(t, []string{"lua/init.lua", "notes.txt"}, dst.bridge.ListFiles())

	assert.Equal(t, http.StatusBadRequest, src.do(http.MethodGet, "/vfs/archive?compression=lz4", nil).Code)
}
