package websocket

import (
	"context"
	"time"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// ReadMessage reads a message from the connection
	ReadMessage() (messageType int, p []byte, err error)

	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() string
}

// MessageHandler answers one inbound client message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, payload []byte) Message
}

// MessageHandlerFunc adapts a function to MessageHandler.
type MessageHandlerFunc func(ctx context.Context, payload []byte) Message

// HandleMessage calls f(ctx, payload).
func (f MessageHandlerFunc) HandleMessage(ctx context.Context, payload []byte) Message {
	return f(ctx, payload)
}
