package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
	"github.com/couchcryptid/blue-plaque-map/internal/observability"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes session snapshots to connected browsers.
type Hub struct {
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    []byte
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: metrics,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Broadcast sends snap to every client and keeps it for late joiners.
// It has the signature of a runtime snapshot listener.
func (h *Hub) Broadcast(snap mapview.Snapshot) {
	data, err := json.Marshal(newStatusResponse(snap))
	if err != nil {
		h.logger.Error("encode snapshot", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("dropping websocket client", "error", err)
			_ = c.Close()
			h.dropLocked(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.metrics.WebsocketClients.Inc()
	if h.last != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, h.last)
	}
	h.mu.Unlock()

	go h.readPump(conn)
}

// readPump discards client messages until the connection closes.
func (h *Hub) readPump(c *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
		_ = c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) dropLocked(c *websocket.Conn) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.metrics.WebsocketClients.Dec()
	}
}
