package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/services"
	"bikepulse/internal/shared/testutil"
	ws "bikepulse/internal/websocket"
	"bikepulse/pkg/contracts/domain"
)

func newWebSocketHandler(t *testing.T, svc DashboardService, origins []string) (*WebSocketHandler, *ws.Hub) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	hub := ws.NewHub(logger, nil)
	hub.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Stop(ctx)
	})

	cfg := config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}
	return NewWebSocketHandler(hub, svc, cfg, origins, logger, apierrors.NewErrorHandler(logger, false)), hub
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "no origin header", allowed: nil, origin: "", want: true},
		{name: "same host", allowed: nil, origin: "http://example.com", want: true},
		{name: "listed origin", allowed: []string{"http://localhost:3000"}, origin: "http://localhost:3000", want: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://evil.test", want: true},
		{name: "foreign origin", allowed: []string{"http://localhost:3000"}, origin: "http://evil.test", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originChecker(tt.allowed)(r))
		})
	}
}

func TestWebSocketHandler_RequiresUpgrade(t *testing.T) {
	h, _ := newWebSocketHandler(t, newScenarioService(t), nil)

	rec := get(t, h, "/ws")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeBody(t, rec)["error_code"])
}

func TestWebSocketHandler_HandleMessage(t *testing.T) {
	h, _ := newWebSocketHandler(t, newScenarioService(t), nil)
	ctx := context.Background()

	t.Run("renders range", func(t *testing.T) {
		msg := h.handleMessage(ctx, []byte(`{"start":"2011-01-04","end":"2011-01-05"}`))
		require.Equal(t, ws.TypeDashboard, msg.Type)

		vm := msg.Data.(*domain.ViewModel)
		assert.Equal(t, 2, vm.Range.RecordCount)
		assert.Equal(t, "250", vm.Headline()[0].Value)
	})

	t.Run("invalid json", func(t *testing.T) {
		msg := h.handleMessage(ctx, []byte(`not json`))
		require.Equal(t, ws.TypeError, msg.Type)
		assert.Equal(t, apierrors.ErrInvalidRequest.ErrorCode, msg.Data.(ws.ErrorData).Code)
	})

	t.Run("invalid date", func(t *testing.T) {
		msg := h.handleMessage(ctx, []byte(`{"start":"2011-02-30"}`))
		require.Equal(t, ws.TypeError, msg.Type)
		assert.Equal(t, "INVALID_DATE", msg.Data.(ws.ErrorData).Code)
	})
}

func TestWebSocketHandler_HandleMessageInternalError(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Render", mock.Anything, services.RangeRequest{}).Return(nil, errors.New("boom"))
	h, _ := newWebSocketHandler(t, svc, nil)

	msg := h.handleMessage(context.Background(), []byte(`{}`))
	require.Equal(t, ws.TypeError, msg.Type)
	assert.Equal(t, apierrors.ErrInternalServer.ErrorCode, msg.Data.(ws.ErrorData).Code)
	svc.AssertExpectations(t)
}

func TestWebSocketHandler_RoundTrip(t *testing.T) {
	h, hub := newWebSocketHandler(t, newScenarioService(t), nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var hello ws.Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, ws.TypeConnection, hello.Type)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(services.RangeRequest{Start: "2011-01-03", End: "2011-01-03"}))

	var reply struct {
		Type string           `json:"type"`
		Data domain.ViewModel `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, string(ws.TypeDashboard), reply.Type)
	assert.Equal(t, 1, reply.Data.Range.RecordCount)
	assert.Len(t, reply.Data.Sections, len(domain.Views))

	raw, err := json.Marshal(reply.Data.Sections[0].Chart.Points)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"2011-01-03"`)
}
