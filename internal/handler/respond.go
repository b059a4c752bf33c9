package handler

import (
	"net/http"

	"mandi-app/internal/billing"

	"github.com/gin-gonic/gin"
)

// respondError maps engine error codes onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch billing.CodeOf(err) {
	case billing.CodeValidation:
		status = http.StatusBadRequest
	case billing.CodeNotFound:
		status = http.StatusNotFound
	case billing.CodeConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
