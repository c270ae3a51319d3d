package runtime

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"sign-relay/contract"
	"sign-relay/errors"
)

// Conn is the slice of a websocket connection the session needs.
// Narrowing it keeps sessions testable without a real socket.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session binds one user to one live connection for its whole lifetime:
// register, read frames in arrival order, deregister on close.
//
// Outbound delivery goes through a buffered channel drained by a write
// pump, so routers on other goroutines never block on a slow socket and
// never write to it concurrently.
type Session struct {
	ID     string
	UserID string

	log  *slog.Logger
	conn Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewSession(log *slog.Logger, userID string, conn Conn, bufferSize int) *Session {
	id := uuid.NewString()
	return &Session{
		ID:     id,
		UserID: userID,
		log:    log.With("session", id, "user", userID),
		conn:   conn,
		send:   make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
}

// Deliver queues payload for the write pump. It never blocks: a full
// buffer drops the frame, which is acceptable under the best-effort
// delivery contract.
func (s *Session) Deliver(payload []byte) error {
	select {
	case <-s.done:
		return stderrors.New("session closed")
	case s.send <- payload:
		return nil
	default:
		s.log.Warn("Send buffer full, dropping frame")
		return nil
	}
}

// Close is idempotent. Closing the transport also unblocks the blocking
// ReadMessage of a session being replaced.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// Run drives the session until the transport closes.
//
// Registration overwrites any previous connection for the same user; the
// superseded session is closed here, so "at most one active connection
// per user" holds and the old socket does not linger until a timeout.
// Deregistration happens exactly once, and only if this session still
// owns the registry slot.
func (s *Session) Run(ctx context.Context, router *Router, registry contract.IRegistry) {
	if previous, existed := registry.Register(s.UserID, s); existed {
		previous.Close()
	}
	s.log.Info("Session open")

	go s.writePump()
	s.readLoop(ctx, router)

	registry.Deregister(s.UserID, s)
	s.Close()
	s.log.Info("Session closed")
}

// readLoop handles frames strictly in arrival order: the next frame is
// not read until the router has fully processed the current one.
func (s *Session) readLoop(ctx context.Context, router *Router) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			// Transport-level failure or peer close: fatal to this
			// connection only.
			return
		}
		if err := router.HandleEvent(ctx, s.UserID, raw); err != nil {
			// Malformed frames and failed writes are per-frame problems;
			// the connection stays open for the next frame.
			if stderrors.Is(err, errors.ErrMalformedEvent) {
				s.log.Warn("Discarding malformed frame", "error", err)
			} else {
				s.log.Error("Event handling failed", "error", err)
			}
		}
	}
}

func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Warn("Write failed, closing session", "error", err)
				s.Close()
				return
			}
		}
	}
}
