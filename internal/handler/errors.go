package handler

import (
	"errors"
	"log"
	"net/http"

	"bacheliers/internal/repository"
	"bacheliers/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to the HTTP taxonomy shared by all endpoints.
func respondError(c *gin.Context, tag string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "violations": verr.Violations})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "registration not found"})
	case errors.Is(err, service.ErrIdentityMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidNotification):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[%s] %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
