package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/middleware"
	"bikepulse/internal/services"
	ws "bikepulse/internal/websocket"
)

// WebSocketHandler upgrades /ws connections and re-renders the dashboard for
// every range the client sends.
type WebSocketHandler struct {
	hub          *ws.Hub
	service      DashboardService
	upgrader     websocket.Upgrader
	settings     ws.Settings
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewWebSocketHandler creates a WebSocket handler. allowedOrigins follows
// the CORS list; "*" accepts any origin.
func NewWebSocketHandler(hub *ws.Hub, service DashboardService, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:          hub,
		service:      service,
		settings:     ws.SettingsFromConfig(cfg),
		logger:       logger.With(slog.String("component", "websocket_handler")),
		errorHandler: errorHandler,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker accepts same-host requests, requests without an Origin
// header and any listed origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("upgrade", "WebSocket upgrade required"))
		return
	}

	// The upgrader writes its own error response.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", middleware.GetRealIP(r)))
		return
	}

	client := ws.NewClient(h.hub, ws.NewConnectionWrapper(conn), ws.MessageHandlerFunc(h.handleMessage),
		h.settings, middleware.GetReqID(r.Context()), h.logger)

	h.logger.InfoContext(r.Context(), "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", middleware.GetRealIP(r)))

	go client.Serve()
}

// handleMessage renders the dashboard for a {"start","end"} request.
func (h *WebSocketHandler) handleMessage(ctx context.Context, payload []byte) ws.Message {
	var req services.RangeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ws.NewErrorMessage(apierrors.ErrInvalidRequest.ErrorCode, "message must be a JSON object with start and end")
	}

	vm, err := h.service.Render(ctx, req)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			return ws.NewErrorMessage(apiErr.ErrorCode, apiErr.Message)
		}
		h.logger.ErrorContext(ctx, "WebSocket render failed", slog.String("error", err.Error()))
		return ws.NewErrorMessage(apierrors.ErrInternalServer.ErrorCode, apierrors.ErrInternalServer.Message)
	}

	return ws.NewMessage(ws.TypeDashboard, vm)
}
