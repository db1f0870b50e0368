package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// EventJoinRoom is the only client-to-server event.
const EventJoinRoom = "joinRoom"

// Session is one connected websocket client. It has exactly one reader and
// one writer goroutine.
type Session struct {
	id     string
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newSession(h *Hub, conn *websocket.Conn) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		conn:   conn,
		hub:    h,
		send:   make(chan []byte, h.queueSize),
		done:   make(chan struct{}),
		logger: h.logger.With(slog.String("session_id", id)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// enqueue never blocks. It reports false when the session is closed or its
// queue is full.
func (s *Session) enqueue(msg []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// readPump handles inbound frames until the connection fails.
func (s *Session) readPump() {
	defer func() {
		s.hub.Leave(s)
		s.close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}
		s.handleFrame(raw)
	}
}

func (s *Session) handleFrame(raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.logger.Debug("ignoring malformed frame", slog.String("error", err.Error()))
		return
	}

	switch frame.Event {
	case EventJoinRoom:
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil || room == "" {
			s.logger.Debug("ignoring joinRoom without a room name")
			return
		}
		s.hub.Join(s, room)
	default:
		s.logger.Debug("ignoring unknown event", slog.String("event", frame.Event))
	}
}

// writePump drains the outbound queue and keeps the connection alive.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		case <-s.done:
			err := s.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait),
			)
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				s.logger.Debug("failed to send close frame", slog.String("error", err.Error()))
			}
			return
		}
	}
}
