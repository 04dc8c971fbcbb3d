package hub

import (
	"sync"

	"pairlink/pkg/logger"
	"pairlink/pkg/metrics"
)

// Member is a non-owning handle to a live session. The hub routes events
// through it but never manages its lifecycle; the session that created the
// handle tears it down.
type Member interface {
	// Deliver hands one event to the member. It must not block
	// indefinitely; a failure affects only this member.
	Deliver(event interface{}) error
	// ID identifies the member for logging.
	ID() string
}

// Hub is the process-wide membership directory and broadcast router. One
// instance is constructed at startup and shared by all connection
// goroutines and the reminder poller.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Member]bool
}

func New() *Hub {
	return &Hub{rooms: make(map[string]map[Member]bool)}
}

// Join registers a member under a conversation key. Registering the same
// member twice is a no-op.
func (h *Hub) Join(key string, m Member) {
	h.mu.Lock()
	room, ok := h.rooms[key]
	if !ok {
		room = make(map[Member]bool)
		h.rooms[key] = room
	}
	if !room[m] {
		room[m] = true
		metrics.ActiveSessions.Inc()
	}
	n := len(room)
	h.mu.Unlock()
	logger.Info("session_joined", "conversation", key, "member", m.ID(), "members", n)
}

// Leave removes a member from a conversation key. Removing an absent
// member is a no-op. Empty rooms are dropped.
func (h *Hub) Leave(key string, m Member) {
	h.mu.Lock()
	room, ok := h.rooms[key]
	if ok && room[m] {
		delete(room, m)
		metrics.ActiveSessions.Dec()
		if len(room) == 0 {
			delete(h.rooms, key)
		}
	}
	n := len(room)
	h.mu.Unlock()
	if ok {
		logger.Info("session_left", "conversation", key, "member", m.ID(), "members", n)
	}
}

// Count returns the current number of members under a key.
func (h *Hub) Count(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[key])
}

// Broadcast delivers an event to a snapshot of the membership set taken at
// call time. Members joining or leaving concurrently may miss this event;
// the persisted log is the durability backstop, not the broadcast. A
// failed delivery is logged and counted but never aborts delivery to the
// remaining members. Returns the number of successful deliveries.
func (h *Hub) Broadcast(key string, event interface{}) int {
	// snapshot under the read lock, deliver outside it so a slow member
	// cannot hold up joins and leaves
	h.mu.RLock()
	snapshot := make([]Member, 0, len(h.rooms[key]))
	for m := range h.rooms[key] {
		snapshot = append(snapshot, m)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, m := range snapshot {
		if err := m.Deliver(event); err != nil {
			metrics.DeliveryFailures.Inc()
			logger.Warn("delivery_failed", "conversation", key, "member", m.ID(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}
