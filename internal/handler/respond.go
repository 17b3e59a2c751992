// Package handler holds the gin HTTP handlers for the REST surface.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/taskloop/backend/internal/middleware"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
	"gorm.io/gorm"
)

// respondError writes the uniform error envelope:
// {error, message, timestamp, request_id?, details?}.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = apperrors.ErrNotFound
		} else {
			appErr = apperrors.ErrInternalError
		}
	}

	if appErr.StatusCode >= 500 {
		_ = c.Error(err)
	}

	body := gin.H{
		"error":     appErr.Code,
		"message":   appErr.Message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if id := middleware.GetRequestID(c); id != "" {
		body["request_id"] = id
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, body)
}

// respondBindError converts a gin binding failure into a validation envelope.
func respondBindError(c *gin.Context, err error) {
	respondError(c, &apperrors.AppError{
		Code:       apperrors.CodeValidationError,
		Message:    "Invalid request body",
		StatusCode: http.StatusBadRequest,
		Details:    err.Error(),
		Err:        err,
	})
}
