package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"listingstudio.app/studio/internal/http/dto"
	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/service"
)

type StagingHandler struct {
	stagingService service.StagingService
}

func NewStagingHandler(stagingService service.StagingService) *StagingHandler {
	return &StagingHandler{stagingService: stagingService}
}

func (h *StagingHandler) Stage(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req dto.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: photo_indexes is required"})
		return
	}

	run, err := h.stagingService.Stage(c.Request.Context(), sessionID, req.PhotoIndexes)
	if err != nil {
		writeError(c, err, "start staging")
		return
	}

	c.JSON(http.StatusAccepted, dto.ToStagingRunResponse(run, photosPath(sessionID)))
}

func (h *StagingHandler) Status(c *gin.Context) {
	sessionID := c.Param("session_id")

	run, err := h.stagingService.Status(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "get staging status")
		return
	}

	c.JSON(http.StatusOK, dto.ToStagingRunResponse(run, photosPath(sessionID)))
}

// Photo serves the enhanced bytes of one succeeded task.
func (h *StagingHandler) Photo(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo index"})
		return
	}

	run, err := h.stagingService.Status(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err, "get staged photo")
		return
	}

	task, ok := run.Task(index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo was not staged"})
		return
	}

	switch task.State {
	case model.TaskStateSucceeded:
		c.Data(http.StatusOK, task.Enhanced.MimeType, task.Enhanced.Data)
	case model.TaskStateFailed:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "staging failed", "reason": task.Error})
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "staging still in progress", "state": task.State})
	}
}

func photosPath(sessionID string) string {
	return fmt.Sprintf("/api/v1/sessions/%s/staging/photos", sessionID)
}
