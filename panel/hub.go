package panel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/geodrill"
	"github.com/phanxgames/geodrill/internal/metrics"
)

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypePing     = "ping"
)

// Message is what panel clients receive.
type Message struct {
	Type      string             `json:"type"`
	State     *geodrill.MapState `json:"state,omitempty"`
	Stats     *AreaStats         `json:"stats,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

const (
	sendBuffer   = 64
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans map state snapshots out to connected websocket clients. A newly
// connected client first receives the latest snapshot.
type Hub struct {
	pois   []geodrill.PointOfInterest
	logger *slog.Logger

	clients    map[*client]bool
	broadcast  chan Message
	register   chan *client
	unregister chan *client
	done       chan struct{}
	last       *Message
	nextID     atomic.Uint64
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewHub creates a hub computing statistics over pois. Call Run to start it.
func NewHub(pois []geodrill.PointOfInterest, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		pois:       pois,
		logger:     logger,
		clients:    make(map[*client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Snapshot builds the message for state.
func (h *Hub) Snapshot(state geodrill.MapState) Message {
	stats := Stats(h.pois, state.Region, state.SubRegion)
	return Message{Type: TypeSnapshot, State: &state, Stats: &stats, Timestamp: time.Now()}
}

// Publish queues a snapshot of state for every client. It never blocks: a
// snapshot is dropped when the queue is full.
func (h *Hub) Publish(state geodrill.MapState) {
	select {
	case h.broadcast <- h.Snapshot(state):
	default:
		h.logger.Debug("panel_snapshot_dropped")
	}
}

// Run serves the hub until ctx ends, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			metrics.PanelClients.Inc()
			h.logger.Info("panel_client_connected", "id", c.id)
			if h.last != nil {
				h.deliver(c, *h.last)
			}

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Info("panel_client_disconnected", "id", c.id)
			}

		case msg := <-h.broadcast:
			h.last = &msg
			metrics.PanelBroadcastsTotal.Inc()
			for c := range h.clients {
				h.deliver(c, msg)
			}
		}
	}
}

// deliver sends without blocking, dropping clients that cannot keep up.
func (h *Hub) deliver(c *client, msg Message) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("panel_client_slow", "id", c.id)
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	metrics.PanelClients.Dec()
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("panel_upgrade_failed", "err", err)
		return
	}
	c := &client{
		id:   fmt.Sprintf("panel-%d", h.nextID.Add(1)),
		hub:  h,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.hub.logger.Debug("panel_write_failed", "id", c.id, "err", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(Message{Type: TypePing, Timestamp: time.Now()}); err != nil {
				return
			}
		}
	}
}

// readPump discards client input and unregisters on disconnect.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("panel_read_failed", "id", c.id, "err", err)
			}
			return
		}
	}
}
