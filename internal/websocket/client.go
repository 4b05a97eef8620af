package websocket

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bikepulse/internal/config"
	"bikepulse/internal/infrastructure"
)

// Time allowed to write a message to the peer
const writeWait = 10 * time.Second

// Settings bounds a client connection.
type Settings struct {
	PingPeriod     time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// SettingsFromConfig derives client settings from the WebSocket config.
func SettingsFromConfig(cfg config.WebSocketConfig) Settings {
	s := Settings{
		PingPeriod:     cfg.PingPeriod,
		PongWait:       cfg.PongWait,
		MaxMessageSize: cfg.MaxMessageSize,
		SendBuffer:     256,
	}
	if s.PongWait <= 0 {
		s.PongWait = config.WebSocketPongWait
	}
	// Pings must arrive before the peer's read deadline.
	if s.PingPeriod <= 0 || s.PingPeriod >= s.PongWait {
		s.PingPeriod = (s.PongWait * 9) / 10
	}
	if s.MaxMessageSize <= 0 {
		s.MaxMessageSize = config.WebSocketMaxMessageSize
	}
	return s
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub     *Hub
	conn    Connection
	handler MessageHandler
	cfg     Settings

	// Buffered channel of outbound messages, closed by the hub.
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	messagesSent     int64
	messagesReceived int64
}

// NewClient creates a client for conn. traceID may be empty.
func NewClient(hub *Hub, conn Connection, handler MessageHandler, cfg Settings, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)

	return &Client{
		hub:         hub,
		conn:        conn,
		handler:     handler,
		cfg:         cfg,
		send:        make(chan []byte, cfg.SendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger:      logger,
		metrics:     hub.metrics,
	}
}

// ID returns the client identifier.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// Serve registers the client and runs both pumps until the connection
// closes. It blocks.
func (c *Client) Serve() {
	if !c.hub.Register(c) {
		c.conn.Close()
		return
	}

	go c.WritePump()
	c.ReadPump()
}

// ReadPump reads client requests and queues the handler's replies.
func (c *Client) ReadPump() {
	ctx := c.context()

	defer func() {
		c.logger.InfoContext(ctx, "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		message = bytes.TrimSpace(message)

		c.messagesReceived++
		infrastructure.RecordWebSocketMessage(ctx, c.metrics, "in")

		if isHeartbeat(message) {
			c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
			continue
		}

		reply := c.handler.HandleMessage(ctx, message)
		if reply.TraceID == "" {
			reply.TraceID = c.traceID
		}
		c.hub.SendTo(c, reply)
	}
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	ctx := c.context()

	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(ctx, "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++
			infrastructure.RecordWebSocketMessage(ctx, c.metrics, "out")

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
