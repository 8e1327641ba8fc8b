package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookworm/internal/apiclient"
	"bookworm/internal/domain"
)

// writeError maps service errors onto HTTP status codes. Backend errors
// surfaced through the API client keep their upstream status.
func writeError(c *gin.Context, err error) {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
	case errors.Is(err, domain.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.As(err, &apiErr):
		c.JSON(apiErr.StatusCode, gin.H{"message": apiErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
