package ws_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/api/ws"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/bridge"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/vfs"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"github.com/A5R13L/gmod-monaco-editor/internal/shared/id"
	"github.com/A5R13L/gmod-monaco-editor/tests/helpers/testutil"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	hub     *ws.Hub
	bridge  *bridge.Bridge
	metrics *monitoring.Metrics
	url     string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	t.Cleanup(metrics.Close)

	reg, _ := testutil.NewTestRegistry(t)
	hub := ws.NewHub(nil, metrics)
	b := bridge.New(hub, reg, vfs.New(), bridge.Config{Debounce: 5 * time.Millisecond, Metrics: metrics})
	hub.Attach(b)
	t.Cleanup(b.Close)
	t.Cleanup(hub.Close)

	router := gin.New()
	router.GET("/ws", hub.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &fixture{
		hub:     hub,
		bridge:  b,
		metrics: metrics,
		url:     "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
	}
}

type frame struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (f *fixture) dial(t *testing.T) (*websocket.Conn, frame) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hello := readUntil(t, conn, "connected")
	return conn, hello
}

func send(t *testing.T, conn *websocket.Conn, id, msgType string, payload interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":      id,
		"type":    msgType,
		"payload": payload,
	}))
}

// readUntil skips frames until one of msgType arrives
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)

		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Type == msgType {
			return f
		}
	}
}

func TestConnectedSnapshot(t *testing.T) {
	f := setup(t)
	f.bridge.CreateSession(session.Spec{Name: "init.lua", IsFocused: true})

	_, hello := f.dial(t)

	var payload struct {
		ClientID string               `json:"clientId"`
		Sessions []session.Serialized `json:"sessions"`
		Theme    string               `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(hello.Payload, &payload))
	assert.True(t, strings.HasPrefix(payload.ClientID, id.ClientPrefix+"_"), payload.ClientID)
	require.Len(t, payload.Sessions, 1)
	assert.Equal(t, "init.lua", payload.Sessions[0].Name)
	assert.Equal(t, "vs-dark", payload.Theme)

	assert.Equal(t, 1, f.hub.ClientCount())
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.WSConnections))
}

func TestCreateSessionReplyAndUpdate(t *testing.T) {
	f := setup(t)
	conn, _ := f.dial(t)

	send(t, conn, "1", "create_session", session.Spec{Name: "init.lua", Code: "print(1)", IsFocused: true})

	result := readUntil(t, conn, "result")
	assert.Equal(t, "1", result.ID)
	var created session.Serialized
	require.NoError(t, json.Unmarshal(result.Payload, &created))
	assert.Equal(t, "init.lua", created.Name)
	assert.Equal(t, "print(1)", created.Code)

	update := readUntil(t, conn, "session_update")
	var sessions []session.Serialized
	require.NoError(t, json.Unmarshal(update.Payload, &sessions))
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsFocused)
}

func TestCommandResults(t *testing.T) {
	f := setup(t)
	conn, _ := f.dial(t)

	send(t, conn, "1", "create_session", session.Spec{Name: "a", IsFocused: true})
	readUntil(t, conn, "result")

	tests := []struct {
		name    string
		msgType string
		payload interface{}
		want    string
	}{
		{"close unknown", "close_session", map[string]string{"name": "zzz"}, `{"ok":false}`},
		{"rename", "rename_session", map[string]string{"name": "b", "oldName": "a"}, `{"ok":true}`},
		{"lint report", "submit_lua_report", map[string]interface{}{"events": []map[string]interface{}{
			{"message": "unused", "line": 1, "startColumn": 1, "endColumn": 2},
		}}, `{"ok":true}`},
		{"problems", "get_problems", nil, `{"session":"b","markers":[{"message":"unused","severity":4,"startLineNumber":1,"startColumn":1,"endLineNumber":1,"endColumn":2}]}`},
		{"goto problem", "goto_problem", map[string]int{"index": 0}, `{"ok":true}`},
		{"next name", "next_session_name", nil, `{"name":"Tab #1"}`},
		{"add file", "add_file", map[string]string{"path": "lua/init.lua", "content": "x"}, `{"ok":true}`},
		{"list files", "list_files", nil, `["lua/init.lua"]`},
		{"sidebar", "set_sidebar_visible", map[string]bool{"visible": false}, `{"tabBarVisible":true,"allowTabCommands":false,"sidebarVisible":false}`},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := string(rune('a' + i))
			send(t, conn, id, tt.msgType, tt.payload)
			got := readUntil(t, conn, "result")
			assert.Equal(t, id, got.ID)
			assert.JSONEq(t, tt.want, string(got.Payload))
		})
	}
}

func TestErrorReplies(t *testing.T) {
	f := setup(t)
	conn, _ := f.dial(t)

	send(t, conn, "1", "no_such_command", nil)
	got := readUntil(t, conn, "error")
	assert.Equal(t, "1", got.ID)
	assert.JSONEq(t, `{"message":"unknown message type"}`, string(got.Payload))

	send(t, conn, "2", "create_session", []int{1})
	got = readUntil(t, conn, "error")
	assert.Equal(t, "2", got.ID)
	assert.Contains(t, string(got.Payload), "invalid payload")

	send(t, conn, "3", "set_theme", map[string]string{"id": "nope"})
	got = readUntil(t, conn, "error")
	assert.Equal(t, "3", got.ID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	got = readUntil(t, conn, "error")
	assert.Empty(t, got.ID)

	send(t, conn, "4", "ping", nil)
	got = readUntil(t, conn, "pong")
	assert.Equal(t, "4", got.ID)
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	f := setup(t)
	a, _ := f.dial(t)
	b, _ := f.dial(t)

	send(t, a, "1", "set_theme", map[string]string{"id": "hc-black"})

	got := readUntil(t, b, "theme_changed")
	assert.JSONEq(t, `{"theme":"hc-black"}`, string(got.Payload))
	assert.Equal(t, "hc-black", f.bridge.Themes().Current().ID)
}

func TestExecuteBroadcast(t *testing.T) {
	f := setup(t)
	f.bridge.CreateSession(session.Spec{Name: "a", Code: "print(1)", IsFocused: true})
	conn, _ := f.dial(t)

	send(t, conn, "1", "trigger_action", map[string]string{"id": "editor.command.execute_client"})

	got := readUntil(t, conn, "execute")
	assert.JSONEq(t, `{"realm":"client","code":"print(1)"}`, string(got.Payload))
}

func TestDisconnectUnregisters(t *testing.T) {
	f := setup(t)
	conn, _ := f.dial(t)
	require.Equal(t, 1, f.hub.ClientCount())

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return f.hub.ClientCount() == 0 && promtest.ToFloat64(f.metrics.WSConnections) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
