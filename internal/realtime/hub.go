// Package realtime is the websocket gateway: it authenticates persistent
// connections, tracks which users are online, and routes message-delivery
// events to the receiver's live connection.
package realtime

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Hub is the presence registry plus event fanout. One entry per user;
// a reconnect evicts the previous connection (last writer wins).
//
// All registry mutations and event enqueues happen under one mutex, so
// presence snapshots reach the per-connection send queues in mutation order.
type Hub struct {
	mu      sync.Mutex
	conns   map[uint]*Conn
	logger  *zap.Logger
	metrics *hubMetrics
}

// NewHub creates an empty hub. reg may be nil to use the default
// prometheus registerer.
func NewHub(logger *zap.Logger, reg prometheus.Registerer) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		conns:   make(map[uint]*Conn),
		logger:  logger,
		metrics: newHubMetrics(reg),
	}
}

// register adds a connection for its user, evicting any previous one,
// and broadcasts the fresh online snapshot to everyone.
func (h *Hub) register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.conns[c.userID]; ok {
		h.closeLocked(old)
		h.metrics.recordEviction()
		h.logger.Info("connection evicted",
			zap.Uint("user_id", c.userID),
			zap.String("conn_id", old.id))
	}
	h.conns[c.userID] = c
	h.metrics.incConn()
	h.broadcastOnlineLocked()

	h.logger.Info("connection registered",
		zap.Uint("user_id", c.userID),
		zap.String("conn_id", c.id))
}

// unregister removes the connection if it is still the one registered for
// its user. A connection that was already evicted is a no-op.
func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur, ok := h.conns[c.userID]
	if !ok || cur != c {
		return
	}
	delete(h.conns, c.userID)
	h.closeLocked(c)
	h.broadcastOnlineLocked()

	h.logger.Info("connection unregistered",
		zap.Uint("user_id", c.userID),
		zap.String("conn_id", c.id))
}

// closeLocked marks the connection dead and closes its send queue, which
// terminates its write pump. Caller must hold h.mu.
func (h *Hub) closeLocked(c *Conn) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	h.metrics.decConn()
}

// enqueueLocked hands an event to one connection without blocking the hub.
// A connection that cannot keep up loses the event. Caller must hold h.mu.
func (h *Hub) enqueueLocked(c *Conn, ev Event) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		h.metrics.recordDropped("slow_consumer")
		h.logger.Warn("send queue full, event dropped",
			zap.Uint("user_id", c.userID),
			zap.String("event", ev.Name))
		return false
	}
}

// broadcastOnlineLocked pushes the current online-user snapshot to every
// open connection. Caller must hold h.mu.
func (h *Hub) broadcastOnlineLocked() {
	ids := h.onlineLocked()
	ev := Event{Name: EventOnlineUsers, Data: ids}
	for _, c := range h.conns {
		h.enqueueLocked(c, ev)
	}
}

func (h *Hub) onlineLocked() []uint {
	ids := make([]uint, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OnlineUsers returns the ids of users with a live connection.
func (h *Hub) OnlineUsers() []uint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.onlineLocked()
}

// IsOnline reports whether the user currently has a registered connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.conns[userID]
	return ok
}

// Deliver pushes a newMessage event to the receiver's connection if one is
// registered. Returns false when the receiver is offline or the event was
// dropped; the message itself is already persisted, so this is best-effort.
func (h *Hub) Deliver(receiverID uint, message interface{}) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[receiverID]
	if !ok {
		h.metrics.recordDropped("offline")
		return false
	}
	if !h.enqueueLocked(c, Event{Name: EventNewMessage, Data: message}) {
		return false
	}
	h.metrics.recordDelivered()
	return true
}
