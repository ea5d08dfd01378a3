package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/riskdesk/internal/audit"
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/riskscore"
	"github.com/wonny/riskdesk/pkg/logger"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AlertMessage is pushed to subscribers after every refresh
type AlertMessage struct {
	Type          string                             `json:"type"`
	RunID         string                             `json:"run_id"`
	GeneratedAt   time.Time                          `json:"generated_at"`
	Connected     bool                               `json:"connected"`
	RiskScore     riskscore.Result                   `json:"risk_score"`
	Alerts        []contracts.AlertRecord            `json:"alerts"`
	Optimizations []contracts.OptimizationSuggestion `json:"optimizations"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans refresh results out to websocket subscribers.
// Slow subscribers whose buffer is full are dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *logger.Logger
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  log.WithField("component", "ws_hub"),
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish implements the refresh job's publisher
func (h *Hub) Publish(report *audit.Report) {
	msg, err := json.Marshal(AlertMessage{
		Type:          "refresh",
		RunID:         report.RunID,
		GeneratedAt:   report.GeneratedAt,
		Connected:     report.Connected,
		RiskScore:     report.RiskScore,
		Alerts:        report.Alerts,
		Optimizations: report.Optimizations,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode alert message")
		return
	}
	h.Broadcast(msg)
}

// Broadcast queues msg for every subscriber
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("Subscriber too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection
// GET /ws/alerts
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Subscriber connected")

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes the send channel once; writePump then closes the socket
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readPump discards inbound messages and detects closed connections
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

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
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
