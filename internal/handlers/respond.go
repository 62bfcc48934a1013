package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursekit/coursekit-backend/internal/apperr"
)

// respondError maps the service error taxonomy onto HTTP statuses: 404 for
// missing resources, 400 for validation and range faults, 401 for auth, 502
// for transient upstream failures, 500 otherwise.
func respondError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsValidation(err), errors.Is(err, apperr.ErrOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.IsAuth(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case apperr.IsTransient(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
