package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/services"
)

// respondServiceError maps a service error onto the HTTP status taxonomy:
// validation 400, auth 401, read-only/forbidden 403, missing 404, state or
// version conflicts 409, oversized uploads 413, broken dependencies 502.
// Anything unrecognized is a 500 with a generic message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, services.ErrUnsupportedFileType),
		errors.Is(err, services.ErrEmptyArchive),
		errors.Is(err, services.ErrNoValidReceipts),
		errors.Is(err, services.ErrTitularRequired),
		errors.Is(err, services.ErrMissingCommissionRate),
		errors.Is(err, services.ErrCalculationRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})

	case errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, services.ErrOperationReadOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})

	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrOperationTerminal),
		errors.Is(err, services.ErrOperationClosed),
		errors.Is(err, services.ErrTitularAlreadySet),
		errors.Is(err, services.ErrCalculationExists),
		errors.Is(err, services.ErrCodeAlreadyAssigned),
		errors.Is(err, services.ErrClientNotActive),
		errors.Is(err, services.ErrLayoutAlreadyBuilt):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})

	case errors.Is(err, apperrors.ErrDependency),
		errors.Is(err, services.ErrOcrExtractionFailed),
		errors.Is(err, services.ErrExtractorUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
