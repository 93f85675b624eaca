package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go-freelance-backend/internal/notification"
	"go-freelance-backend/pkg/logger"
	"go-freelance-backend/pkg/metrics"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

type NotificationStreamHandler struct {
	broker   notification.Broker
	upgrader websocket.Upgrader
}

func NewNotificationStreamHandler(protected *gin.RouterGroup, broker notification.Broker, allowedOrigins []string) {
	handler := &NotificationStreamHandler{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
	protected.GET("/ws/notifications", handler.Serve)
}

// originChecker accepts same-host requests and the configured frontend origins
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed[origin] {
			return true
		}
		return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host
	}
}

// Serve godoc
// @Summary      Live notification stream
// @Description  WebSocket pushing every event published for the authenticated user
// @Tags         notifications
// @Security     SessionAuth
// @Success      101
// @Failure      401  {object}  response.Response
// @Router       /ws/notifications [get]
func (h *NotificationStreamHandler) Serve(c *gin.Context) {
	userID, _ := caller(c)

	// Subscribe before upgrading so a broker failure still gets a JSON error
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	events, unsubscribe, err := h.broker.Subscribe(ctx, notification.UserChannel(userID))
	if err != nil {
		cancel()
		c.Error(err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the client
		unsubscribe()
		cancel()
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	metrics.WebsocketConnections.Inc()
	log := logger.Log.With(zap.String("user_id", userID))
	log.Debug("notification stream opened")

	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, events)

	unsubscribe()
	cancel()
	conn.Close()
	metrics.WebsocketConnections.Dec()
	log.Debug("notification stream closed")
}

// readPump only drains control frames; the stream is server to client
func (h *NotificationStreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *NotificationStreamHandler) writePump(ctx context.Context, conn *websocket.Conn, events <-chan []byte) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		case payload, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
