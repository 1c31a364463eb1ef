package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// JSON responses never load sub-resources
	apiCSP = "default-src 'none'; frame-ancestors 'none'"

	// The bundled client renders post bodies that embed images from any https host
	clientCSP = "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'"
)

// SecurityHeaders sets the browser hardening headers. API paths get a CSP that
// forbids everything; other paths (the static client) get a page policy. HSTS
// is only sent in production, where TLS terminates in front of the server.
func SecurityHeaders(isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if isAPIPath(c.Request.URL.Path) {
			h.Set("Content-Security-Policy", apiCSP)
			h.Set("Cache-Control", "no-store")
		} else {
			h.Set("Content-Security-Policy", clientCSP)
		}

		if isProduction {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/") || path == "/healthz"
}
