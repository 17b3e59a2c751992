package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
	"github.com/user/taskloop/backend/pkg/jwt"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	UserIDKey           = "user_id"
	EmailKey            = "email"
	ClaimsKey           = "claims"
)

// Auth validates the bearer token and stores the caller's identity on the
// context. Browsers cannot set headers on a WebSocket handshake, so a
// `?token=` query parameter is accepted as a fallback.
func Auth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			abortWithAppError(c, apperrors.ErrAuthenticationRequired)
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				abortWithAppError(c, apperrors.ErrTokenExpired)
				return
			}
			abortWithAppError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthorizationHeader)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, BearerPrefix)
}

// GetUserID extracts the authenticated user id from the context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// MustGetUserID extracts the user id or panics; only valid behind Auth.
func MustGetUserID(c *gin.Context) uuid.UUID {
	id, ok := GetUserID(c)
	if !ok {
		panic("user_id missing from authenticated context")
	}
	return id
}

func abortWithAppError(c *gin.Context, appErr *apperrors.AppError) {
	body := gin.H{
		"error":     appErr.Code,
		"message":   appErr.Message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if id := GetRequestID(c); id != "" {
		body["request_id"] = id
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.StatusCode, body)
}
