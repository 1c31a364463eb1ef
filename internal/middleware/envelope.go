package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/apperr"
	"github.com/quillpress/blog-api/pkg/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// AbortWithStatus writes the error envelope and stops the handler chain.
func AbortWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:    false,
		StatusCode: status,
		Message:    message,
	})
}

// AbortWithError maps err through apperr. Internal causes are logged, never returned.
func AbortWithError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	AbortWithStatus(c, status, apperr.MessageOf(err))
}

// Recovery turns panics into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("Panic recovered",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		AbortWithStatus(c, http.StatusInternalServerError, "Internal Server Error")
	})
}
