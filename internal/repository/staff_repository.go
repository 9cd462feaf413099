package repository

import (
	"context"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"

	"gorm.io/gorm"
)

// StaffRepository defines the interface for staff data access
type StaffRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Staff, error)
	FindByEmail(ctx context.Context, email string) (*models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Staff, int64, error)
	ActiveExists(ctx context.Context, id uint) (bool, error)
}

type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) FindByID(ctx context.Context, id uint) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&staff, id).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND discarded_at IS NULL", email).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) Create(ctx context.Context, staff *models.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *staffRepository) Update(ctx context.Context, staff *models.Staff) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

func (r *staffRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *staffRepository) List(ctx context.Context, query *ListQuery) ([]models.Staff, int64, error) {
	var staff []models.Staff
	var total int64

	q := r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("discarded_at IS NULL")

	if query.Search != "" {
		search := "%" + query.Search + "%"
		q = q.Where("full_name ILIKE ? OR email ILIKE ? OR license_number ILIKE ?", search, search, search)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("full_name ASC").
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&staff).Error
	return staff, total, err
}

// ActiveExists reports whether an active, non-deleted staff member exists.
// Used both for entity checks and for resolving accountable actors.
func (r *staffRepository) ActiveExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("id = ? AND status = ? AND discarded_at IS NULL", id, models.StatusActive).
		Count(&count).Error
	return count > 0, err
}
