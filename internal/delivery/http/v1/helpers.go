package v1

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/validation"
)

// caller returns the authenticated user id and role set by AuthMiddleware
func caller(c *gin.Context) (string, domain.Role) {
	return c.GetString(string(domain.KeyUserID)), domain.Role(c.GetString(string(domain.KeyUserRole)))
}

// bindJSON decodes the body into obj and turns binding failures into a validation AppError
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.Error(apperror.Validation(validation.FormatValidationErrors(err)))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for requests whose fields are all optional; an empty body is fine
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.Validation(validation.FormatValidationErrors(err)))
		return false
	}
	return true
}

// pathID parses a positive int64 route parameter
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Identifiant invalide"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return fallback
}

// PageResult wraps a paginated list
type PageResult struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
