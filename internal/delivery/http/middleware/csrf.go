package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go-freelance-backend/pkg/apperror"
)

const (
	// CSRFTokenCookieName is the cookie the frontend reads the token from
	CSRFTokenCookieName = "csrftoken"
	// CSRFTokenHeaderName must echo the cookie on mutating requests
	CSRFTokenHeaderName = "X-CSRF-Token"
	CSRFTokenLength     = 32
	CSRFTokenExpiry     = 24 * time.Hour
)

// Public auth routes run before any session exists and are guarded by rate limiting
var csrfExemptPaths = map[string]bool{
	"/v1/auth/login":    true,
	"/v1/auth/register": true,
	"/v1/health":        true,
}

func generateCSRFToken() (string, error) {
	b := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CSRFMiddleware implements the double-submit cookie pattern for cookie-authenticated clients.
// Requests carrying a Bearer token are not exposed to CSRF and skip the check.
func CSRFMiddleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			newToken, err := generateCSRFToken()
			if err != nil {
				c.Error(apperror.Internal(err))
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			// HttpOnly is off so the frontend can copy it into the header
			c.SetCookie(CSRFTokenCookieName, newToken, int(CSRFTokenExpiry.Seconds()), "/", "", secureCookie, false)
			csrfCookie = newToken
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if csrfExemptPaths[c.Request.URL.Path] || strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		if headerToken == "" || subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1 {
			c.Error(apperror.Forbidden("Jeton CSRF manquant ou invalide").WithReason(apperror.ReasonCSRF))
			c.Abort()
			return
		}

		c.Next()
	}
}
