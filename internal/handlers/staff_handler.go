package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rcabrera/medtrack-api/internal/middleware"
	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"
	"github.com/rcabrera/medtrack-api/internal/services"
)

// StaffHandler handles staff CRUD requests
type StaffHandler struct {
	staffService *services.StaffService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService *services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// Index lists staff members
func (h *StaffHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		query.PerPage = perPage
	}
	query.Search = c.Query("search")

	members, total, err := h.staffService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.StaffResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, member.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"staff":    responses,
		"total":    total,
		"page":     query.Page,
		"per_page": query.PerPage,
	})
}

// Show returns a single staff member
func (h *StaffHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("staff_id"), 10, 32)
	member, err := h.staffService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": member.ToResponse()})
}

// CreateStaffRequest represents the create request body
type CreateStaffRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	FullName      string `json:"full_name" binding:"required"`
	Role          string `json:"role"`
	Position      string `json:"position"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}

// Create registers a staff member
func (h *StaffHandler) Create(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member := &models.Staff{
		Email:         req.Email,
		FullName:      req.FullName,
		Role:          req.Role,
		Position:      req.Position,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
	}

	actorID := middleware.GetStaffID(c)
	if err := h.staffService.Create(c.Request.Context(), member, req.Password, actorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"staff": member.ToResponse()})
}

// Update modifies staff fields; every changed field is audited
func (h *StaffHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("staff_id"), 10, 32)
	member, err := h.staffService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if v, ok := req["full_name"].(string); ok {
		member.FullName = v
	}
	if v, ok := req["position"].(string); ok {
		member.Position = v
	}
	if v, ok := req["phone"].(string); ok {
		member.Phone = v
	}
	if v, ok := req["license_number"].(string); ok {
		member.LicenseNumber = v
	}

	// Only admin may change role, status, or email
	if middleware.IsAdmin(c) {
		if v, ok := req["role"].(string); ok {
			member.Role = v
		}
		if v, ok := req["status"].(string); ok {
			member.Status = v
		}
		if v, ok := req["email"].(string); ok {
			member.Email = v
		}
	}
	reason, _ := req["reason"].(string)

	actorID := middleware.GetStaffID(c)
	if err := h.staffService.Update(c.Request.Context(), member, actorID, reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": member.ToResponse()})
}

// Delete soft-deletes a staff member and their ledger rows
func (h *StaffHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("staff_id"), 10, 32)
	reason := c.Query("reason")

	actorID := middleware.GetStaffID(c)
	if err := h.staffService.Delete(c.Request.Context(), uint(id), actorID, reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted"})
}
