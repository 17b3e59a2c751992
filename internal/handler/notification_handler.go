package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/middleware"
	"github.com/user/taskloop/backend/internal/pubsub"
	"github.com/user/taskloop/backend/internal/service"
)

const (
	streamWriteWait   = 10 * time.Second
	streamPingPeriod  = 30 * time.Second
	streamEventBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins were already screened by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type NotificationHandler struct {
	notifications *service.NotificationService
	hub           *pubsub.Hub
	log           zerolog.Logger
}

func NewNotificationHandler(notifications *service.NotificationService, hub *pubsub.Hub, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		hub:           hub,
		log:           log.With().Str("component", "notification_stream").Logger(),
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly, _ := boolQuery(c, "unread_only")
	resp, err := h.notifications.List(
		middleware.MustGetUserID(c),
		unreadOnly,
		intQuery(c, "limit", 20),
		intQuery(c, "offset", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(middleware.MustGetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *NotificationHandler) Update(c *gin.Context) {
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	notification, err := h.notifications.SetRead(middleware.MustGetUserID(c), notificationID, *req.Read)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notifications.MarkAllRead(middleware.MustGetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.notifications.MarkManyRead(middleware.MustGetUserID(c), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(middleware.MustGetUserID(c), notificationID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream upgrades to a WebSocket and pushes the caller's new notifications
// as they are created. One JSON event per message.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events := make(chan pubsub.NotificationEvent, streamEventBuffer)
	h.hub.Subscribe(userID, events)
	defer h.hub.Unsubscribe(userID, events)

	// Reader goroutine: we never expect client messages, but reading is what
	// surfaces the close frame.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
