// Package hub maintains the in-memory registry of live websocket
// connections and fans domain events out to a user's open sessions.
// The registry is process-local: it does not survive restarts and a
// multi-instance deployment would need sticky routing or an external
// broker in front of it.
package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Frame is the JSON envelope pushed to clients.  Type is either
// "notification" or "chat"; Payload carries the event body.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Frame types.
const (
	FrameNotification = "notification"
	FrameChat         = "chat"
)

// Conn is the subset of *websocket.Conn the hub needs.  Using an
// interface keeps the hub testable without opening sockets.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// ErrNoConnections is returned by Send when the user has no live
// sessions.  Callers treat pushes as best effort, so this usually
// just ends a retry loop early.
var ErrNoConnections = errors.New("no live connections for user")

// ErrDeliveryFailed is returned when the user has live sessions but
// every write failed even after retries.
var ErrDeliveryFailed = errors.New("delivery failed on every connection")

// Hub tracks connections per user id.  A user may have several open
// sessions (tabs, phone); each gets every frame.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint64]map[Conn]struct{}
	log   zerolog.Logger
}

// New returns an empty hub.
func New(log zerolog.Logger) *Hub {
	return &Hub{conns: make(map[uint64]map[Conn]struct{}), log: log}
}

// Register adds a connection for a user.
func (h *Hub) Register(userID uint64, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		h.conns[userID] = set
	}
	set[c] = struct{}{}
}

// Unregister drops a connection and closes it.
func (h *Hub) Unregister(userID uint64, c Conn) {
	h.mu.Lock()
	set, ok := h.conns[userID]
	if ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
	h.mu.Unlock()
	_ = c.Close()
}

// Sessions reports how many live connections a user has.
func (h *Hub) Sessions(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

func (h *Hub) snapshot(userID uint64) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.conns[userID]
	targets := make([]Conn, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	return targets
}

// Send writes a frame once to every live session of a user.
// Connections that fail to write are evicted.  ErrNoConnections is
// returned when the user has no sessions at all; a partial delivery
// counts as success.
func (h *Hub) Send(userID uint64, f Frame) error {
	return h.SendRetry(userID, f, 1, 0)
}

// SendRetry pushes a frame with a fixed retry policy: up to attempts
// write rounds with pause between them.  Only connections that failed
// the previous round are retried, so a healthy session never sees a
// duplicate frame.  Connections still failing after the last round
// are evicted.  It is used for notification pushes where the DB row
// is already written and only delivery is retried.
func (h *Hub) SendRetry(userID uint64, f Frame, attempts int, pause time.Duration) error {
	targets := h.snapshot(userID)
	if len(targets) == 0 {
		return ErrNoConnections
	}

	pending := targets
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(pause)
		}
		var failed []Conn
		for _, c := range pending {
			if err := c.WriteJSON(f); err != nil {
				h.log.Debug().Uint64("user_id", userID).Int("round", i+1).Err(err).Msg("hub write failed")
				failed = append(failed, c)
			}
		}
		if len(failed) == 0 {
			return nil
		}
		pending = failed
	}

	for _, c := range pending {
		h.log.Debug().Uint64("user_id", userID).Msg("evicting connection after failed delivery")
		h.Unregister(userID, c)
	}
	if len(pending) == len(targets) {
		return ErrDeliveryFailed
	}
	return nil
}
