package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/service"
)

// UserHeader carries the authenticated caller. Authentication happens in
// front of this service.
const UserHeader = "X-User-ID"

const userKey = "userID"

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if uid := c.GetString(userKey); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
			return
		}
		logger.Debug("Request handled", fields...)
	}
}

func (s *Server) requireUser(c *gin.Context) {
	uid := c.GetHeader(UserHeader)
	if uid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIResponse{Error: "missing " + UserHeader + " header"})
		return
	}
	c.Set(userKey, uid)
	c.Next()

	if c.Writer.Status() < http.StatusBadRequest {
		s.svc.Touch(c.Request.Context(), uid)
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, APIResponse{Success: true, Data: data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, APIResponse{Error: msg})
}

// fail maps service errors onto status codes. Unexpected errors are logged
// and reported without detail.
func (s *Server) fail(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	default:
		s.logger.Error("Request error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("user_id", userID(c)))
		c.JSON(http.StatusInternalServerError, APIResponse{Error: "internal error"})
		return
	}
	c.JSON(status, APIResponse{Error: err.Error()})
}
