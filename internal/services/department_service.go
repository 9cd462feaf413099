package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"

	"gorm.io/gorm"
)

// DepartmentService handles departments, the placement targets
type DepartmentService struct {
	txm         repository.TxManager
	departments repository.DepartmentRepository
	directory   EntityDirectory
}

// NewDepartmentService creates a new department service
func NewDepartmentService(txm repository.TxManager, departments repository.DepartmentRepository, directory EntityDirectory) *DepartmentService {
	return &DepartmentService{
		txm:         txm,
		departments: departments,
		directory:   directory,
	}
}

func (s *DepartmentService) checkActor(ctx context.Context, actorID uint) error {
	if actorID == 0 {
		return ErrUnauthorizedChange
	}
	ok, err := s.directory.StaffExists(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorizedChange
	}
	return nil
}

// FindByID returns a department by ID
func (s *DepartmentService) FindByID(ctx context.Context, id uint) (*models.Department, error) {
	department, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return department, nil
}

// FindAll returns all departments
func (s *DepartmentService) FindAll(ctx context.Context) ([]models.Department, error) {
	return s.departments.FindAll(ctx)
}

// Create registers a department and audits the insert
func (s *DepartmentService) Create(ctx context.Context, department *models.Department, actorID uint) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		if err := r.Department.Create(ctx, department); err != nil {
			return err
		}
		entries, err := buildAuditEntries(RecordInput{
			TableName: "departments",
			RecordID:  department.ID,
			Operation: models.OpInsert,
			ChangedBy: actorID,
		}, time.Now())
		if err != nil {
			return err
		}
		return r.Audit.CreateBatch(ctx, entries)
	})
}

// Update saves changed department fields with per-field audit entries.
// Deactivating a department does not move its occupants; it only stops new
// placements into it.
func (s *DepartmentService) Update(ctx context.Context, department *models.Department, actorID uint, reason string) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		existing, err := r.Department.FindByID(ctx, department.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		changes := diffDepartment(existing, department)
		if err := r.Department.Update(ctx, department); err != nil {
			return err
		}

		entries, err := buildAuditEntries(RecordInput{
			TableName: "departments",
			RecordID:  department.ID,
			Operation: models.OpUpdate,
			ChangedBy: actorID,
			Reason:    reason,
			Changes:   changes,
		}, time.Now())
		if err != nil {
			return err
		}
		return r.Audit.CreateBatch(ctx, entries)
	})
}

func diffDepartment(old, new *models.Department) []models.FieldChange {
	var changes []models.FieldChange
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, models.FieldChange{FieldName: field, OldValue: oldValue, NewValue: newValue})
		}
	}

	add("code", old.Code, new.Code)
	add("name", old.Name, new.Name)
	add("floor", old.Floor, new.Floor)
	add("bed_count", strconv.Itoa(old.BedCount), strconv.Itoa(new.BedCount))
	add("active", strconv.FormatBool(old.Active), strconv.FormatBool(new.Active))
	return changes
}
