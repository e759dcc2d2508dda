package session

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/teilomillet/edgerunner/internal/metrics"
	"github.com/teilomillet/edgerunner/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; exact requests carry arrays
	maxMessageSize = 64 * 1024

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// Session is one WebSocket connection recalculating on every message
type Session struct {
	ID         string
	conn       *websocket.Conn
	Send       chan models.ServerMessage // Closed by the registry on unregister
	registry   Unregisterer
	dispatcher *Dispatcher
	metrics    *metrics.Registry
	log        zerolog.Logger

	connectedAt      time.Time
	messagesSent     int64
	messagesReceived int64
	lastMessageAt    time.Time
	mu               sync.Mutex
}

// Unregisterer is the part of the registry a session needs
type Unregisterer interface {
	Unregister(s *Session)
}

// New creates a session for an upgraded connection
func New(id string, conn *websocket.Conn, registry Unregisterer, dispatcher *Dispatcher, m *metrics.Registry, logger zerolog.Logger) *Session {
	return &Session{
		ID:          id,
		conn:        conn,
		Send:        make(chan models.ServerMessage, sendBufferSize),
		registry:    registry,
		dispatcher:  dispatcher,
		metrics:     m,
		log:         logger.With().Str("session_id", id).Logger(),
		connectedAt: time.Now(),
	}
}

// ReadPump reads requests from the connection and queues their replies
func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.registry.Unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg models.ClientMessage
			if err := s.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.log.Warn().Err(err).Msg("unexpected close")
				}
				return
			}

			s.updateReceived()
			s.handleClientMessage(msg)
		}
	}
}

// WritePump writes queued replies and keeps the connection alive with pings
func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-s.Send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteJSON(message); err != nil {
				s.log.Warn().Err(err).Msg("write failed")
				return
			}

			s.updateSent()

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without blocking.
// Returns false when the buffer is full.
func (s *Session) TrySend(msg models.ServerMessage) bool {
	select {
	case s.Send <- msg:
		return true
	default:
		return false
	}
}

// Stats returns connection statistics
func (s *Session) Stats() models.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionStats{
		SessionID:         s.ID,
		ConnectedAt:       s.connectedAt,
		MessagesSent:      s.messagesSent,
		MessagesReceived:  s.messagesReceived,
		LastMessageAt:     s.lastMessageAt,
		BufferSize:        sendBufferSize,
		BufferUtilization: float64(len(s.Send)) / float64(sendBufferSize) * 100.0,
	}
}

func (s *Session) handleClientMessage(msg models.ClientMessage) {
	var reply models.ServerMessage
	if msg.Type == models.MessageTypeHeartbeat {
		reply = models.ServerMessage{
			Type:      models.MessageTypeHeartbeat,
			RequestID: msg.RequestID,
			Payload:   s.Stats(),
			Timestamp: time.Now(),
		}
	} else {
		reply = s.dispatcher.Dispatch(msg)
	}

	if reply.Type == models.MessageTypeError {
		s.log.Debug().Str("type", msg.Type).Str("request_id", msg.RequestID).Msg("request rejected")
	}
	if !s.TrySend(reply) {
		s.log.Warn().Str("type", msg.Type).Msg("send buffer full, dropping reply")
	}
}

func (s *Session) updateSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messagesSent++
	s.lastMessageAt = time.Now()
	s.metrics.RecordMessage(metrics.DirectionOut)
}

func (s *Session) updateReceived() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messagesReceived++
	s.lastMessageAt = time.Now()
	s.metrics.RecordMessage(metrics.DirectionIn)
}
