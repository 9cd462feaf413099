package repository

import (
	"context"

	"github.com/rcabrera/medtrack-api/internal/models"

	"gorm.io/gorm"
)

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Department, error)
	FindByCode(ctx context.Context, code string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	FindAll(ctx context.Context) ([]models.Department, error)
	ActiveExists(ctx context.Context, id uint) (bool, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) FindByID(ctx context.Context, id uint) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).First(&department, id).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) FindByCode(ctx context.Context, code string) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&department).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) Create(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *departmentRepository) Update(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

func (r *departmentRepository) FindAll(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	err := r.db.WithContext(ctx).Order("code ASC").Find(&departments).Error
	return departments, err
}

func (r *departmentRepository) ActiveExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Department{}).
		Where("id = ? AND active", id).
		Count(&count).Error
	return count > 0, err
}
