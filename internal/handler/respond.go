package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/middleware"
	"github.com/quillpress/blog-api/internal/service"
)

type MessageResponse struct {
	Message string `json:"message"`
}

func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

func respondStatus(c *gin.Context, status int, message string) {
	middleware.AbortWithStatus(c, status, message)
}

// callerFrom must only be used behind AuthMiddleware.
func callerFrom(c *gin.Context) (service.Caller, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondStatus(c, http.StatusUnauthorized, "Unauthorized")
		return service.Caller{}, false
	}
	return service.Caller{ID: claims.UserID, IsAdmin: claims.IsAdmin}, true
}

// idParam parses a uuid path parameter. A malformed id cannot name an existing
// row, so it is reported with notFound.
func idParam(c *gin.Context, name, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondStatus(c, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}
