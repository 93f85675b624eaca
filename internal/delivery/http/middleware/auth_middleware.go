package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/security"
	"go-freelance-backend/pkg/session"
)

// SessionToken reads the session from the Authorization header first, then the session cookie
func SessionToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie(session.CookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware resolves the session to an active user and exposes it on the gin context
func AuthMiddleware(authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			deny(c, apperror.Unauthorized("Authentification requise"))
			return
		}

		user, err := authUC.ResolveSession(c.Request.Context(), token)
		if err != nil {
			deny(c, err)
			return
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), string(user.Role))
		c.Set(string(domain.KeySession), token)

		c.Next()
	}
}

// RequireRole rejects callers of another role before the handler reads the body
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if domain.Role(c.GetString(string(domain.KeyUserRole))) == role {
			c.Next()
			return
		}

		if logger := security.DefaultLogger(); logger != nil {
			logger.LogAccessDenied(c.Request.Context(), security.EventForbiddenAccess,
				c.GetString(string(domain.KeyUserID)), c.ClientIP(), response.RequestID(c), c.FullPath())
		}

		msg := "Réservé aux comptes Entreprise"
		if role == domain.RoleFreelance {
			msg = "Réservé aux comptes Freelance"
		}
		c.Error(apperror.Forbidden(msg).WithReason(apperror.ReasonWrongRole))
		c.Abort()
	}
}

func deny(c *gin.Context, err error) {
	if logger := security.DefaultLogger(); logger != nil {
		logger.LogAccessDenied(c.Request.Context(), security.EventUnauthorizedAccess,
			"", c.ClientIP(), response.RequestID(c), c.FullPath())
	}
	c.Error(err)
	c.Abort()
}
