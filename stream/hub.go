package stream

import (
	"net/http"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to websocket consumers. A consumer which falls behind
// by more than its queue length loses frames instead of slowing the driver.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	queue    int
	metrics  *Metrics
	logger   kitlog.Logger
	upgrader websocket.Upgrader
}

// NewHub returns a hub queueing up to queue frames per consumer.
// A nil logger discards everything.
func NewHub(queue int, metrics *Metrics, logger kitlog.Logger) *Hub {
	if queue < 1 {
		queue = 1
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		queue:   queue,
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			// The renderer is usually served from another origin.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Len returns the number of connected consumers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues the frame to every consumer. The frame must not be
// modified afterwards.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
			h.metrics.RecordFrame(true, len(frame))
		default:
			h.metrics.RecordFrame(false, len(frame))
		}
	}
}

// ServeHTTP upgrades the connection and streams frames until the consumer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(h.logger).Log("msg", "upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.queue)}
	h.register(c)
	level.Info(h.logger).Log("msg", "consumer connected", "remote", r.RemoteAddr)
	go h.writePump(c)
	h.readPump(c)
	h.unregister(c)
	level.Info(h.logger).Log("msg", "consumer left", "remote", r.RemoteAddr)
}

// Close disconnects every consumer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.metrics.SetClients(0)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.metrics.SetClients(len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.metrics.SetClients(len(h.clients))
}

// readPump discards anything the consumer sends; it returns once the
// connection is closed.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(512)
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

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
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
