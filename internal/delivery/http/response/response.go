package response

import (
	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Details   []string    `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// RequestID returns the id assigned by the RequestID middleware
func RequestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string) // Safe type assertion
	return idStr
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: RequestID(c),
	})
}

// Error sends an error response. The human readable message is repeated in "error"
// and reason is the machine-stable code clients switch on.
func Error(c *gin.Context, status int, message, reason string, details []string) {
	c.JSON(status, Response{
		Success:   false,
		Message:   message,
		Error:     message,
		Code:      reason,
		Details:   details,
		RequestID: RequestID(c),
	})
}
