package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rcabrera/medtrack-api/internal/jobs"
	"github.com/rcabrera/medtrack-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Patient    *PatientHandler
	Staff      *StaffHandler
	Department *DepartmentHandler
	Assignment *AssignmentHandler
	Audit      *AuditHandler
	Report     *ReportHandler
	Job        *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, worker *jobs.Worker) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(),
		Auth:       NewAuthHandler(svcs.Auth),
		Patient:    NewPatientHandler(svcs.Patient),
		Staff:      NewStaffHandler(svcs.Staff),
		Department: NewDepartmentHandler(svcs.Department),
		Assignment: NewAssignmentHandler(svcs.Assignment),
		Audit:      NewAuditHandler(svcs.Audit),
		Report:     NewReportHandler(svcs.Report),
		Job:        NewJobHandler(worker),
	}
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotAssigned):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorizedChange):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
