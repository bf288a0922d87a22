package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/action"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/bridge"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/completion"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/search"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// feedTimeout bounds extend_autocomplete_with_url
const feedTimeout = 30 * time.Second

var errUnknownType = errors.New("unknown message type")

type handlerFunc func(ctx context.Context, b *bridge.Bridge, payload json.RawMessage) (interface{}, error)

func (h *Hub) readLoop(ctx context.Context, cl *client) {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", zap.String("client", cl.id), zap.Error(err))
			}
			return
		}
		_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))

		var req Request
		if err := sonic.Unmarshal(data, &req); err != nil {
			h.sendTo(cl, newMessage("", MsgError, errorPayload{Message: "malformed message"}))
			continue
		}
		h.metrics.RecordWSMessage("in", req.Type)
		h.dispatch(ctx, cl, req)
	}
}

func (h *Hub) dispatch(ctx context.Context, cl *client, req Request) {
	if req.Type == "ping" {
		h.sendTo(cl, newMessage(req.ID, MsgPong, nil))
		return
	}

	fn, ok := h.handlers[req.Type]
	if !ok {
		h.sendTo(cl, newMessage(req.ID, MsgError, errorPayload{Message: errUnknownType.Error()}))
		return
	}

	result, err := fn(ctx, h.bridge, req.Payload)
	if err != nil {
		h.logger.Debug("WebSocket command failed", zap.String("type", req.Type), zap.Error(err))
		h.sendTo(cl, newMessage(req.ID, MsgError, errorPayload{Message: err.Error()}))
		return
	}
	h.sendTo(cl, newMessage(req.ID, MsgResult, result))
}

// decode reads payload into a T; an absent payload is the zero value
func decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 || string(payload) == "null" {
		return v, nil
	}
	if err := sonic.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("invalid payload: %w", err)
	}
	return v, nil
}

// with adapts a typed command to a handlerFunc
func with[T any](fn func(ctx context.Context, b *bridge.Bridge, in T) (interface{}, error)) handlerFunc {
	return func(ctx context.Context, b *bridge.Bridge, payload json.RawMessage) (interface{}, error) {
		in, err := decode[T](payload)
		if err != nil {
			return nil, err
		}
		return fn(ctx, b, in)
	}
}

func okResult(v bool) (interface{}, error) {
	return okPayload{OK: v}, nil
}

type nameArgs struct {
	Name string `json:"name"`
}

type closeArgs struct {
	Name     string `json:"name"`
	SwitchTo string `json:"switchTo"`
}

type loadArgs struct {
	Sessions []session.Spec `json:"sessions"`
	Active   string         `json:"active"`
}

type renameArgs struct {
	Name    string `json:"name"`
	OldName string `json:"oldName"`
}

type namesArgs struct {
	Names []string `json:"names"`
}

type sessionCodeArgs struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type codeArgs struct {
	Code          string `json:"code"`
	KeepViewState bool   `json:"keepViewState"`
}

type languageArgs struct {
	Language string `json:"language"`
}

type lineArgs struct {
	Line int `json:"line"`
}

type indexArgs struct {
	Index int `json:"index"`
}

type idArgs struct {
	ID string `json:"id"`
}

type keysArgs struct {
	Keys string `json:"keys"`
}

type tabBarArgs struct {
	Visible       bool `json:"visible"`
	AllowCommands bool `json:"allowCommands"`
}

type visibleArgs struct {
	Visible bool `json:"visible"`
}

type urlArgs struct {
	URL string `json:"url"`
}

type fileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type publishArgs struct {
	Name string              `json:"name"`
	Data session.PublishData `json:"data"`
}

type realmArgs struct {
	Realm string `json:"realm"`
}

type actionArgs struct {
	ID               string   `json:"id"`
	Label            string   `json:"label"`
	KeyBindings      []string `json:"keyBindings"`
	ContextMenuGroup string   `json:"contextMenuGroup"`
}

func commandHandlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		// Sessions
		"get_sessions": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return b.GetSessions(), nil
		}),
		"create_session": with(func(_ context.Context, b *bridge.Bridge, spec session.Spec) (interface{}, error) {
			return b.CreateSession(spec), nil
		}),
		"create_new_session": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return b.CreateNewSession(), nil
		}),
		"close_session": with(func(_ context.Context, b *bridge.Bridge, in closeArgs) (interface{}, error) {
			return okResult(b.CloseSession(in.Name, in.SwitchTo))
		}),
		"close_current_session": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return okResult(b.CloseCurrentSession())
		}),
		"close_sessions": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			b.CloseSessions()
			return okResult(true)
		}),
		"load_sessions": with(func(_ context.Context, b *bridge.Bridge, in loadArgs) (interface{}, error) {
			b.LoadSessions(in.Sessions, in.Active)
			return b.GetSessions(), nil
		}),
		"set_active_session": with(func(_ context.Context, b *bridge.Bridge, in nameArgs) (interface{}, error) {
			return okResult(b.SetActiveSession(in.Name))
		}),
		"switch_to_last_session": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return okResult(b.SwitchToLastSession())
		}),
		"reopen_last_closed_session": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return okResult(b.ReopenLastClosedSession())
		}),
		"rename_session": with(func(_ context.Context, b *bridge.Bridge, in renameArgs) (interface{}, error) {
			return okResult(b.RenameSession(in.Name, in.OldName))
		}),
		"reorder_sessions": with(func(_ context.Context, b *bridge.Bridge, in namesArgs) (interface{}, error) {
			b.ReorderSessions(in.Names)
			return b.Sessions().Names(), nil
		}),
		"set_session_code": with(func(_ context.Context, b *bridge.Bridge, in sessionCodeArgs) (interface{}, error) {
			return okResult(b.SetSessionCode(in.Name, in.Code))
		}),
		"set_code": with(func(_ context.Context, b *bridge.Bridge, in codeArgs) (interface{}, error) {
			return okResult(b.SetCode(in.Code, in.KeepViewState))
		}),
		"set_language": with(func(_ context.Context, b *bridge.Bridge, in languageArgs) (interface{}, error) {
			return okResult(b.SetLanguage(in.Language))
		}),
		"set_publish_data": with(func(_ context.Context, b *bridge.Bridge, data session.PublishData) (interface{}, error) {
			return okResult(b.SetPublishData(data))
		}),
		"next_session_name": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return map[string]string{"name": b.NextSessionName()}, nil
		}),
		"goto_line": with(func(_ context.Context, b *bridge.Bridge, in lineArgs) (interface{}, error) {
			return okResult(b.GotoLine(in.Line))
		}),
		"submit_lua_report": with(func(_ context.Context, b *bridge.Bridge, report bridge.LuaReport) (interface{}, error) {
			return okResult(b.SubmitLuaReport(report))
		}),
		"get_problems": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return b.Problems(), nil
		}),
		"goto_problem": with(func(_ context.Context, b *bridge.Bridge, in indexArgs) (interface{}, error) {
			return okResult(b.GotoProblem(in.Index))
		}),

		// Host intents
		"ready": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			b.Ready()
			return okResult(true)
		}),
		"export_session": with(func(_ context.Context, b *bridge.Bridge, in nameArgs) (interface{}, error) {
			return okResult(b.ExportSession(in.Name))
		}),
		"import_session": with(func(_ context.Context, b *bridge.Bridge, in sessionCodeArgs) (interface{}, error) {
			return okResult(b.ImportSession(in.Name, in.Code))
		}),
		"publish_session": with(func(_ context.Context, b *bridge.Bridge, in publishArgs) (interface{}, error) {
			return okResult(b.PublishSession(in.Name, in.Data))
		}),
		"execute": with(func(_ context.Context, b *bridge.Bridge, in realmArgs) (interface{}, error) {
			return okResult(b.Execute(in.Realm))
		}),
		"open_url": with(func(_ context.Context, b *bridge.Bridge, in urlArgs) (interface{}, error) {
			return okResult(b.OpenURL(in.URL))
		}),

		// Appearance and actions
		"set_theme": with(func(_ context.Context, b *bridge.Bridge, in idArgs) (interface{}, error) {
			if err := b.SetTheme(in.ID); err != nil {
				return nil, err
			}
			return okResult(true)
		}),
		"add_action": with(func(_ context.Context, b *bridge.Bridge, in actionArgs) (interface{}, error) {
			err := b.AddAction(action.Action{
				ID:               in.ID,
				Label:            in.Label,
				KeyBindings:      in.KeyBindings,
				ContextMenuGroup: in.ContextMenuGroup,
			})
			if err != nil {
				return nil, err
			}
			return okResult(true)
		}),
		"trigger_action": with(func(_ context.Context, b *bridge.Bridge, in idArgs) (interface{}, error) {
			return okResult(b.TriggerAction(in.ID))
		}),
		"press_keys": with(func(_ context.Context, b *bridge.Bridge, in keysArgs) (interface{}, error) {
			return okResult(b.PressKeys(in.Keys))
		}),
		"set_tab_bar_visible": with(func(_ context.Context, b *bridge.Bridge, in tabBarArgs) (interface{}, error) {
			b.SetTabBarVisible(in.Visible, in.AllowCommands)
			return b.UI(), nil
		}),
		"set_sidebar_visible": with(func(_ context.Context, b *bridge.Bridge, in visibleArgs) (interface{}, error) {
			b.SetSidebarVisible(in.Visible)
			return b.UI(), nil
		}),

		// Completion
		"add_autocomplete_value": with(func(_ context.Context, b *bridge.Bridge, item completion.Item) (interface{}, error) {
			b.AddAutocompleteValue(item)
			return okResult(true)
		}),
		"add_autocomplete_values": with(func(_ context.Context, b *bridge.Bridge, items []completion.Item) (interface{}, error) {
			b.AddAutocompleteValues(items)
			return okResult(true)
		}),
		"load_autocomplete": with(func(_ context.Context, b *bridge.Bridge, data completion.ClientData) (interface{}, error) {
			b.LoadAutocomplete(data)
			return okResult(true)
		}),
		"load_autocomplete_state": func(_ context.Context, b *bridge.Bridge, payload json.RawMessage) (interface{}, error) {
			if err := b.LoadAutocompleteState(payload); err != nil {
				return nil, err
			}
			return okResult(true)
		},
		"extend_autocomplete_with_url": with(func(ctx context.Context, b *bridge.Bridge, in urlArgs) (interface{}, error) {
			ctx, cancel := context.WithTimeout(ctx, feedTimeout)
			defer cancel()
			return map[string]int{"added": b.ExtendAutocompleteWithURL(ctx, in.URL)}, nil
		}),
		"reset_autocompletion": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			b.ResetAutocompletion()
			return okResult(true)
		}),
		"add_snippet": with(func(_ context.Context, b *bridge.Bridge, s completion.Snippet) (interface{}, error) {
			b.AddSnippet(s.Name, s.Code)
			return okResult(true)
		}),
		"load_snippets": with(func(_ context.Context, b *bridge.Bridge, snippets []completion.Snippet) (interface{}, error) {
			b.LoadSnippets(snippets)
			return okResult(true)
		}),

		// Files and search
		"add_file": with(func(_ context.Context, b *bridge.Bridge, in fileArgs) (interface{}, error) {
			if err := b.AddFile(in.Path, in.Content); err != nil {
				return nil, err
			}
			return okResult(true)
		}),
		"remove_file": with(func(_ context.Context, b *bridge.Bridge, in fileArgs) (interface{}, error) {
			return okResult(b.RemoveFile(in.Path))
		}),
		"list_files": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return b.ListFiles(), nil
		}),
		"file_tree": with(func(_ context.Context, b *bridge.Bridge, _ struct{}) (interface{}, error) {
			return b.FileTree(), nil
		}),
		"search": with(func(ctx context.Context, b *bridge.Bridge, opts search.Options) (interface{}, error) {
			return b.Search(ctx, opts), nil
		}),
		"open_result": with(func(_ context.Context, b *bridge.Bridge, res search.Result) (interface{}, error) {
			if err := b.OpenResult(res); err != nil {
				return nil, err
			}
			return okResult(true)
		}),
	}
}
