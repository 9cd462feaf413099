package repository

import (
	"context"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"

	"gorm.io/gorm"
)

// PatientRepository defines the interface for patient data access
type PatientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Patient, error)
	FindByMedicalRecNo(ctx context.Context, recNo string) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
	Update(ctx context.Context, patient *models.Patient) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Patient, int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&patient, id).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByMedicalRecNo(ctx context.Context, recNo string) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("medical_rec_no = ? AND discarded_at IS NULL", recNo).
		First(&patient).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

func (r *patientRepository) Update(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Save(patient).Error
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *patientRepository) List(ctx context.Context, query *ListQuery) ([]models.Patient, int64, error) {
	var patients []models.Patient
	var total int64

	q := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("discarded_at IS NULL")

	if query.Search != "" {
		search := "%" + query.Search + "%"
		q = q.Where("full_name ILIKE ? OR identity ILIKE ? OR medical_rec_no ILIKE ?", search, search, search)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("full_name ASC").
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&patients).Error
	return patients, total, err
}

func (r *patientRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ? AND discarded_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}
