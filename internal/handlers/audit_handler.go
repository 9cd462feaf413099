package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/services"
)

// AuditHandler exposes the audit trail read side
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// HistoryFor returns all audit entries for a record, most recent first
func (h *AuditHandler) HistoryFor(c *gin.Context) {
	tableName := c.Param("table")
	recordID, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	entries, err := h.auditService.HistoryFor(c.Request.Context(), tableName, uint(recordID))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, entry.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"entries": responses})
}

// RecentActivity returns audit entries within a trailing window of days,
// optionally filtered by table. Backs the compliance dashboard.
func (h *AuditHandler) RecentActivity(c *gin.Context) {
	windowDays, err := strconv.Atoi(c.DefaultQuery("window_days", "7"))
	if err != nil || windowDays < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window_days"})
		return
	}
	tableName := c.Query("table")

	entries, err := h.auditService.RecentActivity(c.Request.Context(), windowDays, tableName)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, entry.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":     responses,
		"window_days": windowDays,
	})
}
