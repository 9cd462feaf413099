package services

import (
	"github.com/rcabrera/medtrack-api/internal/config"
	"github.com/rcabrera/medtrack-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth       *AuthService
	Patient    *PatientService
	Staff      *StaffService
	Department *DepartmentService
	Assignment *AssignmentService
	Audit      *AuditService
	Report     *ReportService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, txm repository.TxManager, cfg *config.Config) *Services {
	directory := NewEntityDirectory(repos.Patient, repos.Staff, repos.Department)

	return &Services{
		Auth:       NewAuthService(repos.Staff, cfg),
		Patient:    NewPatientService(txm, repos.Patient, directory),
		Staff:      NewStaffService(txm, repos.Staff, directory),
		Department: NewDepartmentService(txm, repos.Department, directory),
		Assignment: NewAssignmentService(txm, repos.Assignment, directory),
		Audit:      NewAuditService(repos.Audit, directory),
		Report:     NewReportService(repos.Assignment, repos.Audit, repos.Patient, repos.Staff, repos.Department),
	}
}
