package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/utils"
)

const (
	ClaimsKey         = "claims"
	AccessTokenCookie = "access_token"
)

// AuthMiddleware accepts "Authorization: Bearer <token>" and falls back to the
// access_token cookie set at signin.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			AbortWithStatus(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			return
		}
		if tokenString == "" {
			AbortWithStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				AbortWithStatus(c, http.StatusUnauthorized, "Token has expired")
				return
			}
			AbortWithStatus(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// bearerToken returns false only for a malformed Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return "", false
		}
		return strings.TrimSpace(token), true
	}

	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return "", true
	}
	return cookie, true
}

// ClaimsFrom returns the claims stored by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.Claims)
	return claims, ok
}

// AdminMiddleware must run after AuthMiddleware. message is returned with the 403.
func AdminMiddleware(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			AbortWithStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !claims.IsAdmin {
			AbortWithStatus(c, http.StatusForbidden, message)
			return
		}

		c.Next()
	}
}
