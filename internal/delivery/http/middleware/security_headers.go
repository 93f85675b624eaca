package middleware

import (
	"github.com/gin-gonic/gin"

	"go-freelance-backend/pkg/session"
)

// SecurityHeadersMiddleware adds baseline security headers to all responses
func SecurityHeadersMiddleware(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hsts {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")

		// Swagger UI serves HTML and needs inline styles
		c.Header("Content-Security-Policy",
			"default-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"frame-ancestors 'none'; "+
				"base-uri 'self'")

		// Authenticated responses must not be cached
		if c.GetHeader("Authorization") != "" || hasSessionCookie(c) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
		}

		c.Next()
	}
}

func hasSessionCookie(c *gin.Context) bool {
	v, err := c.Cookie(session.CookieName)
	return err == nil && v != ""
}
