package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rcabrera/medtrack-api/internal/middleware"
	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/services"
)

// DepartmentHandler handles department CRUD requests
type DepartmentHandler struct {
	departmentService *services.DepartmentService
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(departmentService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

// Index lists all departments
func (h *DepartmentHandler) Index(c *gin.Context) {
	departments, err := h.departmentService.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.DepartmentResponse, 0, len(departments))
	for _, department := range departments {
		responses = append(responses, department.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"departments": responses})
}

// Show returns a single department
func (h *DepartmentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("department_id"), 10, 32)
	department, err := h.departmentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"department": department.ToResponse()})
}

// CreateDepartmentRequest represents the create request body
type CreateDepartmentRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Floor    string `json:"floor"`
	BedCount int    `json:"bed_count"`
}

// Create registers a department
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	department := &models.Department{
		Code:     req.Code,
		Name:     req.Name,
		Floor:    req.Floor,
		BedCount: req.BedCount,
		Active:   true,
	}

	actorID := middleware.GetStaffID(c)
	if err := h.departmentService.Create(c.Request.Context(), department, actorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"department": department.ToResponse()})
}

// Update modifies department fields; every changed field is audited
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("department_id"), 10, 32)
	department, err := h.departmentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if v, ok := req["code"].(string); ok {
		department.Code = v
	}
	if v, ok := req["name"].(string); ok {
		department.Name = v
	}
	if v, ok := req["floor"].(string); ok {
		department.Floor = v
	}
	if v, ok := req["bed_count"].(float64); ok {
		department.BedCount = int(v)
	}
	if v, ok := req["active"].(bool); ok {
		department.Active = v
	}
	reason, _ := req["reason"].(string)

	actorID := middleware.GetStaffID(c)
	if err := h.departmentService.Update(c.Request.Context(), department, actorID, reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"department": department.ToResponse()})
}
