package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rcabrera/medtrack-api/internal/jobs"
)

// JobHandler exposes background worker statistics
type JobHandler struct {
	worker *jobs.Worker
}

// NewJobHandler creates a new job handler
func NewJobHandler(worker *jobs.Worker) *JobHandler {
	return &JobHandler{worker: worker}
}

// Stats returns worker statistics
func (h *JobHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.worker.GetStats()})
}
