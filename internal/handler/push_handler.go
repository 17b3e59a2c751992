package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/middleware"
	"github.com/user/taskloop/backend/internal/service"
)

type PushHandler struct {
	push *service.PushService
}

func NewPushHandler(push *service.PushService) *PushHandler {
	return &PushHandler{push: push}
}

func (h *PushHandler) VAPIDPublicKey(c *gin.Context) {
	key, err := h.push.VAPIDPublicKey()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VAPIDPublicKeyResponse{PublicKey: key})
}

func (h *PushHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subscription, err := h.push.Subscribe(middleware.MustGetUserID(c), req, c.GetHeader("User-Agent"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscription)
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.push.Unsubscribe(middleware.MustGetUserID(c), req.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PushHandler) ListSubscriptions(c *gin.Context) {
	subscriptions, err := h.push.ListSubscriptions(middleware.MustGetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subscriptions})
}

func (h *PushHandler) DeleteSubscription(c *gin.Context) {
	subscriptionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.push.DeleteSubscription(middleware.MustGetUserID(c), subscriptionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
