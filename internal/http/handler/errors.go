package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"listingstudio.app/studio/internal/gateway"
	"listingstudio.app/studio/internal/service"
	"listingstudio.app/studio/internal/session"
	"listingstudio.app/studio/internal/staging"
)

// writeError maps service errors to responses. Unknown errors are logged and
// reported as 500 without details.
func writeError(c *gin.Context, err error, action string) {
	var verr *service.ValidationError
	var genErr *gateway.GenerationFailure

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission", "problems": verr.Problems})
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrNoListing):
		c.JSON(http.StatusConflict, gin.H{"error": "no listing has been generated yet"})
	case errors.Is(err, service.ErrGenerationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "a generation is already in progress"})
	case errors.Is(err, service.ErrSessionReset):
		c.JSON(http.StatusConflict, gin.H{"error": "session was reset, submit the form again"})
	case errors.Is(err, service.ErrNoStagingRun):
		c.JSON(http.StatusNotFound, gin.H{"error": "no staging run"})
	case errors.Is(err, staging.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": "select at least one photo"})
	case errors.Is(err, service.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &genErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "listing generation failed", "reason": genErr.Reason})
	default:
		slog.ErrorContext(c.Request.Context(), "failed to "+action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	}
}
