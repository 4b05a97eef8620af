package websocket

import (
	"encoding/json"
	"time"
)

// Message types exchanged over the dashboard socket.
const (
	TypeConnection = "connection"
	TypeDashboard  = "dashboard"
	TypeError      = "error"
	TypeHeartbeat  = "heartbeat"
)

// Message is the envelope of every frame the server sends.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// ErrorData is the payload of a TypeError message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage builds a message stamped with the current time.
func NewMessage(msgType string, data interface{}) Message {
	return Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewErrorMessage builds a TypeError message.
func NewErrorMessage(code, message string) Message {
	return NewMessage(TypeError, ErrorData{Code: code, Message: message})
}

func (m Message) encode() ([]byte, error) {
	return json.Marshal(m)
}

// isHeartbeat reports whether the payload is a client keep-alive.
func isHeartbeat(payload []byte) bool {
	var probe struct {
		Type string `json:"type"`
	}
	return json.Unmarshal(payload, &probe) == nil && probe.Type == TypeHeartbeat
}
