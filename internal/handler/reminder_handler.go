package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/middleware"
	"github.com/user/taskloop/backend/internal/service"
)

type ReminderHandler struct {
	reminders *service.ReminderService
}

func NewReminderHandler(reminders *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

func (h *ReminderHandler) Create(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reminder, err := h.reminders.Create(middleware.MustGetUserID(c), todoID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) ListByTodo(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reminders, err := h.reminders.ListByTodo(middleware.MustGetUserID(c), todoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

func (h *ReminderHandler) Snooze(c *gin.Context) {
	reminderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SnoozeReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reminder, err := h.reminders.Snooze(middleware.MustGetUserID(c), reminderID, req.Minutes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	reminderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reminders.Delete(middleware.MustGetUserID(c), reminderID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
