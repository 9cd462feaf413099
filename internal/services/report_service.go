package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"

	"gorm.io/gorm"
)

// ReportService is the read-side facade over the assignment ledger and the
// audit trail. It only filters and joins committed state; it never mutates.
type ReportService struct {
	assignments repository.AssignmentRepository
	audits      repository.AuditRepository
	patients    repository.PatientRepository
	staff       repository.StaffRepository
	departments repository.DepartmentRepository
}

// NewReportService creates a new report service
func NewReportService(assignments repository.AssignmentRepository, audits repository.AuditRepository, patients repository.PatientRepository, staff repository.StaffRepository, departments repository.DepartmentRepository) *ReportService {
	return &ReportService{
		assignments: assignments,
		audits:      audits,
		patients:    patients,
		staff:       staff,
		departments: departments,
	}
}

// Occupant is one entity currently placed in a department
type Occupant struct {
	EntityType string    `json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	Name       string    `json:"name"`
	Since      time.Time `json:"since"`
	Reason     string    `json:"reason"`
}

// Occupants returns every entity whose current placement is the department
func (s *ReportService) Occupants(ctx context.Context, departmentID uint) ([]Occupant, error) {
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	assignments, err := s.assignments.FindCurrentByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	occupants := make([]Occupant, 0, len(assignments))
	for _, a := range assignments {
		occupants = append(occupants, Occupant{
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			Name:       s.entityName(ctx, a.EntityType, a.EntityID),
			Since:      a.StartedAt,
			Reason:     a.Reason,
		})
	}
	return occupants, nil
}

// Stats returns occupancy counts for a department: current occupants by
// entity type, lifetime distinct entities ever assigned, and admissions
// within the trailing window
func (s *ReportService) Stats(ctx context.Context, departmentID uint, windowDays int) (*models.DepartmentStats, error) {
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if windowDays < 1 {
		windowDays = 7
	}

	patients, err := s.assignments.CountCurrentByDepartment(ctx, departmentID, models.EntityPatient)
	if err != nil {
		return nil, err
	}
	staff, err := s.assignments.CountCurrentByDepartment(ctx, departmentID, models.EntityStaff)
	if err != nil {
		return nil, err
	}
	lifetime, err := s.assignments.CountDistinctEntities(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -windowDays)
	recent, err := s.assignments.CountStartedSince(ctx, departmentID, since)
	if err != nil {
		return nil, err
	}

	return &models.DepartmentStats{
		DepartmentID:     departmentID,
		CurrentOccupants: patients,
		CurrentStaff:     staff,
		LifetimeEntities: lifetime,
		RecentAdmissions: recent,
		WindowDays:       windowDays,
	}, nil
}

// NarrativeLine is one human-readable step of a record's change history
type NarrativeLine struct {
	At      time.Time `json:"at"`
	ActorID uint      `json:"actor_id"`
	Actor   string    `json:"actor"`
	Summary string    `json:"summary"`
}

// fieldLabels maps audited column names to the labels the narrative uses
var fieldLabels = map[string]string{
	"department_id":  "department",
	"full_name":      "full name",
	"medical_rec_no": "medical record number",
	"blood_type":     "blood type",
	"license_number": "license number",
	"reason":         "reason",
}

// HistoryNarrative joins the audit entries of a record into a readable
// "what changed, when, by whom" sequence, most recent first. Department
// references are resolved to names; the raw entries stay untouched.
func (s *ReportService) HistoryNarrative(ctx context.Context, tableName string, recordID uint) ([]NarrativeLine, error) {
	entries, err := s.audits.HistoryFor(ctx, tableName, recordID)
	if err != nil {
		return nil, err
	}

	lines := make([]NarrativeLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, NarrativeLine{
			At:      e.ChangedAt,
			ActorID: e.ChangedByID,
			Actor:   s.staffName(ctx, e.ChangedByID),
			Summary: s.summarize(ctx, e),
		})
	}
	return lines, nil
}

func (s *ReportService) summarize(ctx context.Context, e models.AuditEntry) string {
	switch e.Operation {
	case models.OpInsert:
		return fmt.Sprintf("created %s record", singular(e.TableName))
	case models.OpDelete:
		return fmt.Sprintf("deleted %s record", singular(e.TableName))
	}

	field := ""
	if e.FieldName != nil {
		field = *e.FieldName
	}
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}

	oldValue, newValue := e.OldValue, e.NewValue
	if field == "department_id" {
		oldValue = s.departmentName(ctx, e.OldValue)
		newValue = s.departmentName(ctx, e.NewValue)
	}

	switch {
	case oldValue == "":
		return fmt.Sprintf("set %s to %s", label, newValue)
	case newValue == "":
		return fmt.Sprintf("cleared %s (was %s)", label, oldValue)
	default:
		return fmt.Sprintf("changed %s from %s to %s", label, oldValue, newValue)
	}
}

func (s *ReportService) entityName(ctx context.Context, entityType string, entityID uint) string {
	switch entityType {
	case models.EntityPatient:
		if patient, err := s.patients.FindByID(ctx, entityID); err == nil {
			return patient.FullName
		}
	case models.EntityStaff:
		if member, err := s.staff.FindByID(ctx, entityID); err == nil {
			return member.FullName
		}
	}
	return ""
}

func (s *ReportService) staffName(ctx context.Context, id uint) string {
	member, err := s.staff.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return member.FullName
}

// departmentName resolves a stringified department ID to its name. The raw
// value is returned when it does not resolve, so the narrative degrades
// instead of failing after a department is removed.
func (s *ReportService) departmentName(ctx context.Context, value string) string {
	if value == "" {
		return ""
	}
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return value
	}
	department, err := s.departments.FindByID(ctx, uint(id))
	if err != nil {
		return value
	}
	return department.Name
}

func singular(tableName string) string {
	switch tableName {
	case "patients":
		return "patient"
	case "departments":
		return "department"
	case "staff":
		return "staff"
	default:
		return tableName
	}
}
