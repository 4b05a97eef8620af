package websocket

import (
	"context"
	"log/slog"
	"sync"

	"bikepulse/internal/infrastructure"
)

type envelope struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients. Only the run loop sends on or
// closes a client's send channel.
type Hub struct {
	// Registered clients
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	direct     chan envelope

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	quit      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewHub creates a new Hub instance. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan envelope, 64),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start starts the hub loop once.
func (h *Hub) Start() {
	h.startOnce.Do(func() {
		go h.run()
	})
}

// run is the hub's main loop. It returns after Stop.
func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			infrastructure.RecordWebSocketConnection(ctx, h.metrics, 1)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.deliver(client, NewMessage(TypeConnection, map[string]string{
				"status":    "connected",
				"client_id": client.id,
			}))

		case client := <-h.unregister:
			h.remove(client, "client disconnected")

		case e := <-h.direct:
			h.mu.RLock()
			_, ok := h.clients[e.client]
			h.mu.RUnlock()
			if ok {
				h.send(e.client, e.data)
			}
		}
	}
}

// send queues data for a client, dropping the client if its buffer is full.
// Must be called from run.
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.remove(client, "client send buffer full")
	}
}

func (h *Hub) deliver(client *Client, msg Message) {
	data, err := msg.encode()
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return
	}
	h.send(client, data)
}

func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	infrastructure.RecordWebSocketConnection(ctx, h.metrics, -1)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.String("reason", reason),
		slog.Int("total_clients", count),
		slog.String("client_id", client.id))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		infrastructure.RecordWebSocketConnection(client.context(), h.metrics, -1)
	}
}

// Register adds a client to the hub. It reports false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// SendTo queues a message for one client.
func (h *Hub) SendTo(client *Client, msg Message) {
	data, err := msg.encode()
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return
	}
	select {
	case h.direct <- envelope{client: client, data: data}:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client and waits for the loop to exit. ctx bounds the
// wait.
func (h *Hub) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() {
		close(h.quit)
	})
	// A hub that never started has nothing to wait for.
	h.startOnce.Do(func() {
		close(h.done)
	})

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
