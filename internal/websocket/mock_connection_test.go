package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MockConnection is an in-memory Connection. Reads block until a message is
// queued or the connection is closed.
type MockConnection struct {
	mu      sync.Mutex
	written []MockMessage
	reads   chan MockMessage
	closed  chan struct{}
	once    sync.Once

	ReadLimit     int64
	RemoteAddress string
}

// MockMessage represents a message for mocking
type MockMessage struct {
	Type int
	Data []byte
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		reads:         make(chan MockMessage, 16),
		closed:        make(chan struct{}),
		RemoteAddress: "127.0.0.1:8080",
	}
}

// Push queues a text frame for the read pump.
func (m *MockConnection) Push(data string) {
	m.reads <- MockMessage{Type: websocket.TextMessage, Data: []byte(data)}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	select {
	case <-m.closed:
		return errors.New("connection closed")
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, MockMessage{Type: messageType, Data: data})
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.reads:
		return msg.Type, msg.Data, nil
	case <-m.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (m *MockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *MockConnection) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// TextMessages returns the text frames written so far.
func (m *MockConnection) TextMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]byte
	for _, msg := range m.written {
		if msg.Type == websocket.TextMessage {
			out = append(out, msg.Data)
		}
	}
	return out
}

func (m *MockConnection) SetReadDeadline(time.Time) error { return nil }
func (m *MockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *MockConnection) SetPongHandler(func(string) error) {}
func (m *MockConnection) RemoteAddr() string { return m.RemoteAddress }

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) readLimit() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadLimit
}
