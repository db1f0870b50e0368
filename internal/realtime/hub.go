package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/events"
)

// DefaultQueueSize is the per-session outbound buffer length.
const DefaultQueueSize = 64

// ErrHubClosed is returned when emitting on a closed hub.
var ErrHubClosed = errors.New("realtime hub is closed")

// Frame is the wire format in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Observer receives hub lifecycle notifications, e.g. for metrics.
type Observer interface {
	SessionOpened()
	SessionClosed()
	MessageDelivered(event string)
	MessageDropped(event string)
}

type nopObserver struct{}

func (nopObserver) SessionOpened()          {}
func (nopObserver) SessionClosed()          {}
func (nopObserver) MessageDelivered(string) {}
func (nopObserver) MessageDropped(string)   {}

// Options configures a Hub.
type Options struct {
	// AllowedOrigin is the only browser origin accepted on upgrade. Requests
	// without an Origin header are always accepted. Empty allows any origin.
	AllowedOrigin string
	// QueueSize bounds each session's outbound queue.
	QueueSize int
	Observer  Observer
}

// Hub tracks connected sessions and the rooms they joined.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
	closed   bool

	queueSize     int
	allowedOrigin string
	observer      Observer
	logger        *slog.Logger
}

var _ events.EventHandler = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(opts Options, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	return &Hub{
		rooms:         make(map[string]map[*Session]struct{}),
		sessions:      make(map[*Session]map[string]struct{}),
		queueSize:     opts.QueueSize,
		allowedOrigin: opts.AllowedOrigin,
		observer:      opts.Observer,
		logger:        logger.With(slog.String("component", "realtime_hub")),
	}
}

// register adds a freshly connected session. It reports false once the hub
// is closed.
func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.sessions[s] = make(map[string]struct{})
	h.observer.SessionOpened()
	return true
}

// normalizeRoom maps any accepted spelling of a UUID (upper case, braces,
// urn prefix) to its canonical form. Other names are used as sent.
func normalizeRoom(room string) string {
	if id, err := uuid.Parse(room); err == nil {
		return id.String()
	}
	return room
}

// Join subscribes a session to a room. Joining twice is a no-op; unknown or
// departed sessions are ignored.
func (h *Hub) Join(s *Session, room string) {
	room = normalizeRoom(room)

	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.sessions[s]
	if !ok {
		return
	}
	joined[room] = struct{}{}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}

	h.logger.Debug("session joined room",
		slog.String("session_id", s.id),
		slog.String("room", room))
}

// Leave removes a session from every room and forgets it.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	joined, ok := h.sessions[s]
	if ok {
		for room := range joined {
			h.removeFromRoom(s, room)
		}
		delete(h.sessions, s)
	}
	h.mu.Unlock()

	if ok {
		h.observer.SessionClosed()
		h.logger.Debug("session left", slog.String("session_id", s.id))
	}
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(s *Session, room string) {
	members := h.rooms[room]
	delete(members, s)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Emit sends one frame to every session currently in room and returns how
// many sessions accepted it.
func (h *Hub) Emit(room, event string, payload any) (int, error) {
	room = normalizeRoom(room)
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s frame: %w", event, err)
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return 0, ErrHubClosed
	}
	members := make([]*Session, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range members {
		if s.enqueue(msg) {
			delivered++
			h.observer.MessageDelivered(event)
			continue
		}
		h.observer.MessageDropped(event)
		h.logger.Warn("dropped realtime message for slow session",
			slog.String("session_id", s.id),
			slog.String("room", room),
			slog.String("event", event))
	}

	return delivered, nil
}

// HandleEvent implements events.EventHandler by emitting to the owner's room.
func (h *Hub) HandleEvent(_ context.Context, event *events.TaskEvent) error {
	_, err := h.Emit(event.Room(), event.Name, event.Payload)
	return err
}

// RoomSize returns the number of sessions in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[normalizeRoom(room)])
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close disconnects every session and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.rooms = make(map[string]map[*Session]struct{})
	h.sessions = make(map[*Session]map[string]struct{})
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
		h.observer.SessionClosed()
	}

	h.logger.Info("realtime hub closed", slog.Int("sessions", len(sessions)))
}
