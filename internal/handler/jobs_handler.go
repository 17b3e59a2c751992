package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/taskloop/backend/internal/scheduler"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
)

// JobsHandler is the ops surface for triggering a scheduled job out of
// cycle. Triggers route through the scheduler host, so a manual run never
// overlaps a scheduled one.
type JobsHandler struct {
	host       *scheduler.Host
	cronSecret string
}

func NewJobsHandler(host *scheduler.Host, cronSecret string) *JobsHandler {
	return &JobsHandler{host: host, cronSecret: cronSecret}
}

func (h *JobsHandler) Run(c *gin.Context) {
	if h.cronSecret == "" {
		respondError(c, &apperrors.AppError{
			Code:       apperrors.CodeMissingConfig,
			Message:    "Manual job triggers are not configured on this server",
			StatusCode: http.StatusServiceUnavailable,
		})
		return
	}
	provided := c.GetHeader("X-Cron-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.cronSecret)) != 1 {
		respondError(c, apperrors.ErrPermissionDenied)
		return
	}

	name := c.Param("name")
	if err := h.host.RunNow(name); err != nil {
		respondError(c, apperrors.NotFoundError("Unknown job"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": name, "status": "triggered"})
}
