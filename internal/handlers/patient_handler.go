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

// PatientHandler handles patient CRUD requests
type PatientHandler struct {
	patientService *services.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *services.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// Index lists patients
func (h *PatientHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		query.PerPage = perPage
	}
	query.Search = c.Query("search")

	patients, total, err := h.patientService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PatientResponse, 0, len(patients))
	for _, patient := range patients {
		responses = append(responses, patient.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"patients": responses,
		"total":    total,
		"page":     query.Page,
		"per_page": query.PerPage,
	})
}

// Show returns a single patient
func (h *PatientHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	patient, err := h.patientService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": patient.ToResponse()})
}

// CreatePatientRequest represents the create request body
type CreatePatientRequest struct {
	MedicalRecNo string  `json:"medical_rec_no" binding:"required"`
	FullName     string  `json:"full_name" binding:"required"`
	Identity     string  `json:"identity"`
	Sex          string  `json:"sex"`
	Phone        string  `json:"phone"`
	Address      *string `json:"address"`
	BloodType    string  `json:"blood_type"`
	Allergies    *string `json:"allergies"`
}

// Create registers a patient
func (h *PatientHandler) Create(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient := &models.Patient{
		MedicalRecNo: req.MedicalRecNo,
		FullName:     req.FullName,
		Identity:     req.Identity,
		Sex:          req.Sex,
		Phone:        req.Phone,
		Address:      req.Address,
		BloodType:    req.BloodType,
		Allergies:    req.Allergies,
	}

	actorID := middleware.GetStaffID(c)
	if err := h.patientService.Create(c.Request.Context(), patient, actorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"patient": patient.ToResponse()})
}

// Update modifies patient fields; every changed field is audited
func (h *PatientHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	patient, err := h.patientService.FindByID(c.Request.Context(), uint(id))
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
		patient.FullName = v
	}
	if v, ok := req["identity"].(string); ok {
		patient.Identity = v
	}
	if v, ok := req["sex"].(string); ok {
		patient.Sex = v
	}
	if v, ok := req["phone"].(string); ok {
		patient.Phone = v
	}
	if v, ok := req["address"].(string); ok {
		patient.Address = &v
	}
	if v, ok := req["blood_type"].(string); ok {
		patient.BloodType = v
	}
	if v, ok := req["allergies"].(string); ok {
		patient.Allergies = &v
	}
	reason, _ := req["reason"].(string)

	actorID := middleware.GetStaffID(c)
	if err := h.patientService.Update(c.Request.Context(), patient, actorID, reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"patient": patient.ToResponse()})
}

// Delete soft-deletes a patient and its ledger rows
func (h *PatientHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	reason := c.Query("reason")

	actorID := middleware.GetStaffID(c)
	if err := h.patientService.Delete(c.Request.Context(), uint(id), actorID, reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted"})
}
