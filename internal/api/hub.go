package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zappabad/optionsim/internal/metrics"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // local single-player server
	},
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WSHub fans market, news and state frames out to websocket clients. Each
// client has its own writer goroutine so a slow client never blocks the others.
type WSHub struct {
	logger *slog.Logger
	buffer int

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewWSHub creates a hub with a per-client queue of buffer frames.
func NewWSHub(buffer int, logger *slog.Logger) *WSHub {
	return &WSHub{
		logger:  logger,
		buffer:  buffer,
		clients: make(map[*wsClient]struct{}),
	}
}

// Broadcast queues msg for every client, dropping it for clients whose queue is full.
func (h *WSHub) Broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("ws marshal failed", "type", msg.Type, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *WSHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and registers the client. hello is sent before
// any broadcast frame.
func (h *WSHub) Serve(w http.ResponseWriter, r *http.Request, hello wsMessage) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "err", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, h.buffer)}
	if data, err := json.Marshal(hello); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Inc()
	h.logger.Info("ws client connected", "total", n)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *WSHub) unregister(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		metrics.WebSocketClients.Dec()
	}
}

// readPump keeps the connection alive and detects disconnects.
func (h *WSHub) readPump(c *wsClient) {
	defer h.unregister(c)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *WSHub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
		metrics.WebSocketClients.Dec()
	}
}
