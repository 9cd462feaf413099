package services

import (
	"context"
	"errors"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffService handles staff records
type StaffService struct {
	txm       repository.TxManager
	staff     repository.StaffRepository
	directory EntityDirectory
}

// NewStaffService creates a new staff service
func NewStaffService(txm repository.TxManager, staff repository.StaffRepository, directory EntityDirectory) *StaffService {
	return &StaffService{
		txm:       txm,
		staff:     staff,
		directory: directory,
	}
}

func (s *StaffService) checkActor(ctx context.Context, actorID uint) error {
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

// FindByID returns a staff member by ID
func (s *StaffService) FindByID(ctx context.Context, id uint) (*models.Staff, error) {
	member, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return member, nil
}

// List returns staff matching the query
func (s *StaffService) List(ctx context.Context, query *repository.ListQuery) ([]models.Staff, int64, error) {
	return s.staff.List(ctx, query)
}

// Create registers a staff member with a hashed password and audits the insert
func (s *StaffService) Create(ctx context.Context, member *models.Staff, password string, actorID uint) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	member.EncryptedPassword = string(hashed)

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		if err := r.Staff.Create(ctx, member); err != nil {
			return err
		}
		entries, err := buildAuditEntries(RecordInput{
			TableName: "staff",
			RecordID:  member.ID,
			Operation: models.OpInsert,
			ChangedBy: actorID,
		}, time.Now())
		if err != nil {
			return err
		}
		return r.Audit.CreateBatch(ctx, entries)
	})
}

// Update saves changed staff fields with per-field audit entries
func (s *StaffService) Update(ctx context.Context, member *models.Staff, actorID uint, reason string) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		existing, err := r.Staff.FindByID(ctx, member.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		changes := diffStaff(existing, member)
		member.EncryptedPassword = existing.EncryptedPassword
		if err := r.Staff.Update(ctx, member); err != nil {
			return err
		}

		entries, err := buildAuditEntries(RecordInput{
			TableName: "staff",
			RecordID:  member.ID,
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

// Delete soft-deletes a staff member, removes their ledger rows as cascading
// cleanup, and audits the delete
func (s *StaffService) Delete(ctx context.Context, id uint, actorID uint, reason string) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}
	if id == actorID {
		return ErrUnauthorizedChange
	}

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		if _, err := r.Staff.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := r.Staff.SoftDelete(ctx, id); err != nil {
			return err
		}
		if err := r.Assignment.DeleteByEntity(ctx, models.EntityStaff, id); err != nil {
			return err
		}
		entries, err := buildAuditEntries(RecordInput{
			TableName: "staff",
			RecordID:  id,
			Operation: models.OpDelete,
			ChangedBy: actorID,
			Reason:    reason,
		}, time.Now())
		if err != nil {
			return err
		}
		return r.Audit.CreateBatch(ctx, entries)
	})
}

// diffStaff computes field-level changes between the stored and submitted
// staff member. Credentials never appear in the audit trail.
func diffStaff(old, new *models.Staff) []models.FieldChange {
	var changes []models.FieldChange
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, models.FieldChange{FieldName: field, OldValue: oldValue, NewValue: newValue})
		}
	}

	add("email", old.Email, new.Email)
	add("full_name", old.FullName, new.FullName)
	add("role", old.Role, new.Role)
	add("position", old.Position, new.Position)
	add("phone", old.Phone, new.Phone)
	add("status", old.Status, new.Status)
	add("license_number", old.LicenseNumber, new.LicenseNumber)
	return changes
}
