package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/middleware"
	"github.com/user/taskloop/backend/internal/service"
)

type PreferencesHandler struct {
	preferences *service.PreferencesService
}

func NewPreferencesHandler(preferences *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferences: preferences}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.preferences.Get(middleware.MustGetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferencesHandler) Update(c *gin.Context) {
	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	prefs, err := h.preferences.Update(middleware.MustGetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferencesHandler) Timezones(c *gin.Context) {
	c.JSON(http.StatusOK, dto.TimezonesResponse{Timezones: h.preferences.Timezones()})
}
