package ws

import (
	"sync"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/shared/id"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // whole buffers travel in one frame
	sendBuffer     = 64
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		id:   id.NewClientID().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	go c.writePump()
	return c
}

// writePump owns every write to conn. It exits, closing conn, when send is
// closed or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue reports false when the client cannot keep up. Callers hold the
// hub lock so send cannot be closed underneath them.
func (c *client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}
