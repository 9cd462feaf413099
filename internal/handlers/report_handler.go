package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rcabrera/medtrack-api/internal/services"
)

// ReportHandler exposes the read-side reporting facade
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Occupants lists all entities currently placed in a department
func (h *ReportHandler) Occupants(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Param("department_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
		return
	}

	occupants, err := h.reportService.Occupants(c.Request.Context(), uint(departmentID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"department_id": departmentID,
		"occupants":     occupants,
	})
}

// Stats returns occupancy counts for a department
func (h *ReportHandler) Stats(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Param("department_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
		return
	}
	windowDays, _ := strconv.Atoi(c.DefaultQuery("window_days", "7"))

	stats, err := h.reportService.Stats(c.Request.Context(), uint(departmentID), windowDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Narrative returns a record's change history as human-readable lines
func (h *ReportHandler) Narrative(c *gin.Context) {
	tableName := c.Param("table")
	recordID, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	lines, err := h.reportService.HistoryNarrative(c.Request.Context(), tableName, uint(recordID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":     tableName,
		"record_id": recordID,
		"narrative": lines,
	})
}
