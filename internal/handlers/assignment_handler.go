package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rcabrera/medtrack-api/internal/middleware"
	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/services"
)

// AssignmentHandler exposes the assignment ledger
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// AssignRequest represents an assignment request body
type AssignRequest struct {
	EntityType   string `json:"entity_type" binding:"required"`
	EntityID     uint   `json:"entity_id" binding:"required"`
	DepartmentID uint   `json:"department_id" binding:"required"`
	Reason       string `json:"reason"`
}

// Assign moves an entity to a department. A transition that loses a race is
// retried once with a short backoff before the conflict reaches the client.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetStaffID(c)
	assignment, err := h.assignmentService.Assign(c.Request.Context(), req.EntityType, req.EntityID, req.DepartmentID, req.Reason, actorID)
	if errors.Is(err, services.ErrConcurrentModification) {
		time.Sleep(50 * time.Millisecond)
		assignment, err = h.assignmentService.Assign(c.Request.Context(), req.EntityType, req.EntityID, req.DepartmentID, req.Reason, actorID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment.ToResponse()})
}

// ReleaseRequest represents a release request body
type ReleaseRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   uint   `json:"entity_id" binding:"required"`
	Reason     string `json:"reason"`
}

// Release closes an entity's current assignment without opening a new one
func (h *AssignmentHandler) Release(c *gin.Context) {
	var req ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetStaffID(c)
	assignment, err := h.assignmentService.Release(c.Request.Context(), req.EntityType, req.EntityID, actorID, req.Reason)
	if errors.Is(err, services.ErrConcurrentModification) {
		time.Sleep(50 * time.Millisecond)
		assignment, err = h.assignmentService.Release(c.Request.Context(), req.EntityType, req.EntityID, actorID, req.Reason)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment.ToResponse()})
}

// Current returns the department an entity currently resides in
func (h *AssignmentHandler) Current(c *gin.Context) {
	entityType := c.Param("entity_type")
	entityID, _ := strconv.ParseUint(c.Param("entity_id"), 10, 32)

	departmentID, err := h.assignmentService.CurrentLocation(c.Request.Context(), entityType, uint(entityID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"department_id": departmentID})
}

// History returns an entity's placement history, most recent first
func (h *AssignmentHandler) History(c *gin.Context) {
	entityType := c.Param("entity_type")
	entityID, _ := strconv.ParseUint(c.Param("entity_id"), 10, 32)

	history, err := h.assignmentService.History(c.Request.Context(), entityType, uint(entityID))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.AssignmentResponse, 0, len(history))
	for _, assignment := range history {
		responses = append(responses, assignment.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"history": responses})
}

// BulkAssignRequest represents a batch admission request body
type BulkAssignRequest struct {
	Items []services.BulkAssignItem `json:"items" binding:"required,min=1"`
}

// BulkAssign applies a batch of assignments and reports per-row results
func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	var req BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetStaffID(c)
	results := h.assignmentService.BulkAssign(c.Request.Context(), req.Items, actorID)

	failed := 0
	for _, result := range results {
		if result.Error != "" {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"failed":  failed,
	})
}
