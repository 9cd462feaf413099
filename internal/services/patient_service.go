package services

import (
	"context"
	"errors"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"

	"gorm.io/gorm"
)

// PatientService handles patient records. Every mutation is written in the
// same transaction as its audit entries and credited to an explicit actor.
type PatientService struct {
	txm       repository.TxManager
	patients  repository.PatientRepository
	directory EntityDirectory
}

// NewPatientService creates a new patient service
func NewPatientService(txm repository.TxManager, patients repository.PatientRepository, directory EntityDirectory) *PatientService {
	return &PatientService{
		txm:       txm,
		patients:  patients,
		directory: directory,
	}
}

func (s *PatientService) checkActor(ctx context.Context, actorID uint) error {
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

// FindByID returns a patient by ID
func (s *PatientService) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	patient, err := s.patients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return patient, nil
}

// List returns patients matching the query
func (s *PatientService) List(ctx context.Context, query *repository.ListQuery) ([]models.Patient, int64, error) {
	return s.patients.List(ctx, query)
}

// Create registers a patient and audits the insert
func (s *PatientService) Create(ctx context.Context, patient *models.Patient, actorID uint) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		if err := r.Patient.Create(ctx, patient); err != nil {
			return err
		}
		entries, err := buildAuditEntries(RecordInput{
			TableName: "patients",
			RecordID:  patient.ID,
			Operation: models.OpInsert,
			ChangedBy: actorID,
		}, time.Now())
		if err != nil {
			return err
		}
		return r.Audit.CreateBatch(ctx, entries)
	})
}

// Update saves changed patient fields and writes one audit entry per changed
// field, all in one transaction
func (s *PatientService) Update(ctx context.Context, patient *models.Patient, actorID uint, reason string) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		existing, err := r.Patient.FindByID(ctx, patient.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		changes := diffPatient(existing, patient)
		if err := r.Patient.Update(ctx, patient); err != nil {
			return err
		}

		entries, err := buildAuditEntries(RecordInput{
			TableName: "patients",
			RecordID:  patient.ID,
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

// Delete soft-deletes a patient, removes their ledger rows as cascading
// cleanup, and audits the delete. The audit trail keeps the patient's change
// history even though the row and ledger are gone.
func (s *PatientService) Delete(ctx context.Context, id uint, actorID uint, reason string) error {
	if err := s.checkActor(ctx, actorID); err != nil {
		return err
	}

	return s.txm.Do(ctx, func(r *repository.Repositories) error {
		if _, err := r.Patient.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := r.Patient.SoftDelete(ctx, id); err != nil {
			return err
		}
		if err := r.Assignment.DeleteByEntity(ctx, models.EntityPatient, id); err != nil {
			return err
		}
		entries, err := buildAuditEntries(RecordInput{
			TableName: "patients",
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

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// diffPatient computes field-level changes between the stored and submitted
// patient. Values are stringified the way the audit trail stores them.
func diffPatient(old, new *models.Patient) []models.FieldChange {
	var changes []models.FieldChange
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, models.FieldChange{FieldName: field, OldValue: oldValue, NewValue: newValue})
		}
	}

	add("medical_rec_no", old.MedicalRecNo, new.MedicalRecNo)
	add("full_name", old.FullName, new.FullName)
	add("identity", old.Identity, new.Identity)
	add("sex", old.Sex, new.Sex)
	add("phone", old.Phone, new.Phone)
	add("address", strValue(old.Address), strValue(new.Address))
	add("blood_type", old.BloodType, new.BloodType)
	add("allergies", strValue(old.Allergies), strValue(new.Allergies))
	if old.BirthDate != nil || new.BirthDate != nil {
		oldValue, newValue := "", ""
		if old.BirthDate != nil {
			oldValue = old.BirthDate.Format("2006-01-02")
		}
		if new.BirthDate != nil {
			newValue = new.BirthDate.Format("2006-01-02")
		}
		add("birth_date", oldValue, newValue)
	}
	return changes
}
