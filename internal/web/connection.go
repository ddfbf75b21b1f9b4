package web

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// ErrSendBufferFull is returned when a slow client cannot keep up.
var ErrSendBufferFull = errors.New("send buffer full")

// Connection wraps the WebSocket connection with an outgoing queue.
type Connection struct {
	ws        *websocket.Conn
	send      chan []byte
	logger    *log.Logger
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(ws *websocket.Conn, logger *log.Logger) *Connection {
	return &Connection{
		ws:     ws,
		send:   make(chan []byte, 256),
		logger: logger,
	}
}

// ReadPump reads messages from the WebSocket connection until it closes.
func (c *Connection) ReadPump(h MessageHandler) {
	defer c.ws.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("read failed", "err", err)
			}
			return
		}
		h.HandleMessage(message)
	}
}

// WritePump writes queued messages to the WebSocket connection until
// Close is called or a write fails.
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for message := range c.send {
		w, err := c.ws.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		if _, err := w.Write(message); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// SendMessage queues msg as JSON. A full queue closes the connection.
func (c *Connection) SendMessage(msg any) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.ws.Close()
		return ErrSendBufferFull
	}
}

// Close stops the write pump after it drains the queue.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// MessageHandler handles raw messages from the client.
type MessageHandler interface {
	HandleMessage(message []byte)
}
