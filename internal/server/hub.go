/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phuonguno98/panelstat/internal/indicator"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 32
)

// Message is one websocket frame, in either direction.
type Message struct {
	Type      string    `json:"type"` // "series", "ping", "pong"
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// SnapshotSource resolves controller IDs to snapshots on the loop goroutine.
type SnapshotSource interface {
	SnapshotByID(id string) (indicator.Snapshot, bool)
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub streams a snapshot to every websocket client after each tick.
type Hub struct {
	source SnapshotSource
	logger *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates a hub.
func NewHub(source SnapshotSource, logger *slog.Logger) *Hub {
	return &Hub{
		source: source,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*client),
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OnSeriesUpdated implements indicator.RenderSink. Slow clients miss frames.
func (h *Hub) OnSeriesUpdated(id string) {
	if h.Count() == 0 {
		return
	}

	snap, ok := h.source.SnapshotByID(id)
	if !ok {
		return
	}

	data, err := json.Marshal(Message{Type: "series", Timestamp: time.Now(), Data: snap})
	if err != nil {
		h.logger.Error("Failed to marshal snapshot", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("Client send buffer full, skipping frame", "client", c.id)
		}
	}
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, clientSendSize),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("WebSocket client connected", "client", c.id, "total", total)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("WebSocket client disconnected", "client", c.id, "total", total)
}

// readPump answers pings and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket read error", "client", c.id, "error", err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			data, err := json.Marshal(Message{Type: "pong", Timestamp: time.Now()})
			if err != nil {
				continue
			}
			h.mu.RLock()
			select {
			case c.send <- data:
			default:
			}
			h.mu.RUnlock()
		default:
			h.logger.Debug("Unknown message type", "client", c.id, "type", msg.Type)
		}
	}
}

// writePump owns all writes to the connection.
func (h *Hub) writePump(c *client) {
	defer func() {
		if err := c.conn.Close(); err != nil {
			h.logger.Debug("Failed to close websocket", "client", c.id, "error", err)
		}
	}()

	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket write error", "client", c.id, "error", err)
			}
			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for _, c := range h.clients {
		conns = append(conns, c.conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
