package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					zap.String("request_id", response.RequestID(c)),
					zap.String("path", c.FullPath()),
					zap.Error(appErr.Err),
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Reason, appErr.Details)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("unhandled error",
			zap.String("request_id", response.RequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError,
			"An unexpected error occurred. Please try again later.", apperror.ReasonInternal, nil)
	}
}
