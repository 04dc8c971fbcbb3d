package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"pairlink/pkg/hub"
	"pairlink/pkg/logger"
	"pairlink/pkg/metrics"
	"pairlink/pkg/models"
	"pairlink/pkg/store"
	"pairlink/pkg/utils"
	"pairlink/pkg/validation"
)

// State of a connection session. Closed is terminal; a client resumes by
// opening a new connection.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateJoined
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session owns one websocket connection. The read loop is the only reader
// of the connection and the write pump the only writer once the session is
// active; the hub holds it as a non-owning handle for routing.
type Session struct {
	conn     *websocket.Conn
	hub      *hub.Hub
	key      string
	identity string

	state     int32
	send      chan interface{}
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, h *hub.Hub, key, identity string, sendBuffer int) *Session {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Session{
		conn:     conn,
		hub:      h,
		key:      key,
		identity: identity,
		state:    int32(StateConnecting),
		send:     make(chan interface{}, sendBuffer),
		done:     make(chan struct{}),
	}
}

func (s *Session) State() State        { return State(atomic.LoadInt32(&s.state)) }
func (s *Session) setState(next State) { atomic.StoreInt32(&s.state, int32(next)) }

// ID identifies the session in hub logs.
func (s *Session) ID() string {
	return s.identity + "@" + s.key
}

// Deliver enqueues one event for the write pump. It never blocks the
// broadcaster: a closed session or a full buffer is reported as a delivery
// failure for this event only.
func (s *Session) Deliver(event interface{}) error {
	select {
	case <-s.done:
		return fmt.Errorf("session closed")
	default:
	}
	select {
	case s.send <- event:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// teardown runs the mandatory cleanup exactly once on every exit path:
// deregister from the hub, mark the session closed and release the
// connection.
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.hub.Leave(s.key, s)
		s.setState(StateClosed)
		close(s.done)
		_ = s.conn.Close()
		logger.Info("session_closed", "conversation", s.key, "identity", s.identity)
	})
}

// writePump is the single writer of the connection once the session is
// active.
func (s *Session) writePump() {
	for {
		select {
		case ev := <-s.send:
			if err := s.conn.WriteJSON(ev); err != nil {
				logger.Warn("session_write_failed", "conversation", s.key, "identity", s.identity, "error", err)
				s.teardown()
				return
			}
		case <-s.done:
			return
		}
	}
}

// replayHistory emits every persisted message, in append order, to this
// session only, each flagged historical. It runs before the write pump
// starts so a live event can never overtake the history that precedes it.
// A replay failure is logged and never fatal; the session stays usable.
func (s *Session) replayHistory() {
	msgs, err := store.ListMessages(s.key)
	if err != nil {
		logger.Error("history_replay_failed", "conversation", s.key, "identity", s.identity, "error", err)
		return
	}
	for _, m := range msgs {
		if err := s.conn.WriteJSON(models.ChatEventFromMessage(m, true)); err != nil {
			logger.Warn("history_replay_write_failed", "conversation", s.key, "identity", s.identity, "error", err)
			return
		}
	}
	logger.Info("history_replayed", "conversation", s.key, "identity", s.identity, "count", len(msgs))
}

// readLoop processes inbound events strictly in arrival order until the
// transport closes.
func (s *Session) readLoop() {
	defer s.teardown()
	for {
		var ev models.ClientEvent
		if err := s.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("session_read_error", "conversation", s.key, "identity", s.identity, "error", err)
			}
			return
		}
		s.dispatch(ev)
	}
}

// dispatch applies one inbound event. mark_seen reconciles seen state;
// everything else is a send, defaulting to text when the discriminant is
// absent or unrecognized. Failures here are logged and never close the
// connection.
func (s *Session) dispatch(ev models.ClientEvent) {
	if ev.Type == models.KindMarkSeen {
		s.markSeen()
		return
	}
	kind := ev.Type
	if kind != models.KindText && kind != models.KindMedia {
		kind = models.KindText
	}
	if err := validation.ValidateEvent(ev); err != nil {
		// dropped silently from the sender's point of view
		logger.Warn("event_dropped", "conversation", s.key, "identity", s.identity, "reason", err)
		return
	}

	msg := models.Message{
		ID:              utils.GenMessageID(),
		ConversationKey: s.key,
		Sender:          s.identity,
		Kind:            kind,
		Content:         ev.Content,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Seen:            false,
	}
	if err := store.AppendMessage(s.key, msg); err != nil {
		logger.Error("message_persist_failed", "conversation", s.key, "identity", s.identity, "error", err)
		return
	}
	metrics.MessagesPersisted.Inc()

	// the sender is a member of the room like any other, so it receives
	// its own message back as the write confirmation
	metrics.EventsBroadcast.WithLabelValues("chat").Inc()
	s.hub.Broadcast(s.key, models.ChatEventFromMessage(msg, false))
}

// markSeen flips the seen flag on every unseen message from the other
// participant and announces each toggle to the whole room. With nothing to
// toggle it is a no-op and broadcasts nothing.
func (s *Session) markSeen() {
	ids, err := store.MarkSeen(s.key, s.identity)
	if err != nil {
		logger.Error("mark_seen_failed", "conversation", s.key, "identity", s.identity, "error", err)
		return
	}
	for _, id := range ids {
		metrics.EventsBroadcast.WithLabelValues("seen_update").Inc()
		s.hub.Broadcast(s.key, models.SeenUpdateEvent{
			Type:      "seen_update",
			MessageID: id,
			Seen:      true,
		})
	}
}
