package ws

import (
	"net/http"
	"sync"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/bridge"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans bridge callbacks out to every connected client
type Hub struct {
	bridge   *bridge.Bridge
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	mu      sync.RWMutex
	clients map[string]*client
}

var _ bridge.Host = (*Hub)(nil)

// NewHub creates a hub with no clients. Attach must be called before
// connections are served.
func NewHub(logger *zap.Logger, metrics *monitoring.Metrics) *Hub {
	return &Hub{
		logger:  logging.OrNop(logger),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // the editor page is served from the game client
			},
		},
		handlers: commandHandlers(),
		clients:  make(map[string]*client),
	}
}

// Attach sets the bridge inbound commands are dispatched to
func (h *Hub) Attach(b *bridge.Bridge) {
	h.bridge = b
}

// HandleConnection upgrades the request and serves the client until it
// disconnects
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := h.register(conn)
	defer h.unregister(cl)

	h.sendTo(cl, newMessage("", MsgConnected, connectedPayload{
		ClientID: cl.id,
		Sessions: h.bridge.GetSessions(),
		Theme:    h.bridge.Themes().Current().ID,
	}))

	h.readLoop(c.Request.Context(), cl)
}

func (h *Hub) register(conn *websocket.Conn) *client {
	cl := newClient(conn)
	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()

	h.metrics.IncWSConnections()
	h.logger.Info("WebSocket client connected", zap.String("client", cl.id))
	return cl
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl.id]
	if ok {
		delete(h.clients, cl.id)
		cl.close()
	}
	h.mu.Unlock()

	if ok {
		h.metrics.DecWSConnections()
		h.logger.Info("WebSocket client disconnected", zap.String("client", cl.id))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		h.unregister(cl)
	}
}

func (h *Hub) encode(msg Message) ([]byte, bool) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return nil, false
	}
	return data, true
}

func (h *Hub) sendTo(cl *client, msg Message) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	live := h.clients[cl.id] == cl
	queued := live && cl.enqueue(data)
	h.mu.RUnlock()

	if live && !queued {
		h.logger.Warn("WebSocket client too slow, disconnecting", zap.String("client", cl.id))
		h.unregister(cl)
		return
	}
	if queued {
		h.metrics.RecordWSMessage("out", msg.Type)
	}
}

func (h *Hub) broadcast(msgType string, payload interface{}) {
	data, ok := h.encode(newMessage("", msgType, payload))
	if !ok {
		return
	}

	var slow []*client
	h.mu.RLock()
	for _, cl := range h.clients {
		if !cl.enqueue(data) {
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	h.metrics.RecordWSMessage("out", msgType)
	for _, cl := range slow {
		h.logger.Warn("WebSocket client too slow, disconnecting", zap.String("client", cl.id))
		h.unregister(cl)
	}
}

// Host callbacks

func (h *Hub) OnReady() {
	h.broadcast(MsgReady, nil)
}

func (h *Hub) OnCode(code string, versionID int) {
	h.broadcast(MsgCode, codePayload{Code: code, VersionID: versionID})
}

func (h *Hub) OnSessionFocus(s session.Serialized) {
	h.broadcast(MsgSessionFocus, s)
}

func (h *Hub) OnSessionUpdate(sessions []session.Serialized) {
	h.broadcast(MsgSessionUpdate, sessions)
}

func (h *Hub) OnSessionExported(s session.Serialized, code string) {
	h.broadcast(MsgSessionExported, sessionCodePayload{Session: s, Code: code})
}

func (h *Hub) OnSessionImported(s session.Serialized, code string) {
	h.broadcast(MsgSessionImported, sessionCodePayload{Session: s, Code: code})
}

func (h *Hub) OnSessionPublished(s session.Serialized, data session.PublishData) {
	h.broadcast(MsgSessionPublished, publishedPayload{Session: s, Data: data})
}

func (h *Hub) OnThemeChanged(theme string) {
	h.broadcast(MsgThemeChanged, map[string]string{"theme": theme})
}

func (h *Hub) OnAction(id string) {
	h.broadcast(MsgAction, map[string]string{"id": id})
}

func (h *Hub) OnExecute(realm, code string) {
	h.broadcast(MsgExecute, executePayload{Realm: realm, Code: code})
}

func (h *Hub) OpenURL(url string) {
	h.broadcast(MsgOpenURL, map[string]string{"url": url})
}
