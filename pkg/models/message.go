package models

import (
	"encoding/json"
	"time"
)

// Message types for WebSocket communication
const (
	MessageTypeSingle      = "single"
	MessageTypeFlip        = "flip"
	MessageTypeConvert     = "convert"
	MessageTypeIndependent = "independent"
	MessageTypeExact       = "exact"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"

	// ResultSuffix is appended to the request type on replies, e.g. "single_result"
	ResultSuffix = "_result"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SessionStats represents connection statistics
type SessionStats struct {
	SessionID         string    `json:"session_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"` // Percentage
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
