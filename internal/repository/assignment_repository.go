package repository

import (
	"context"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentRepository defines the interface for assignment ledger data access.
// Assignments are append-only: the only mutations are closing a record once
// and updating its secondary reason attribute.
type AssignmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Assignment, error)
	FindCurrent(ctx context.Context, entityType string, entityID uint) (*models.Assignment, error)
	FindCurrentForUpdate(ctx context.Context, entityType string, entityID uint) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Close(ctx context.Context, id uint, endedAt time.Time) error
	UpdateReason(ctx context.Context, id uint, reason string) error
	HistoryOf(ctx context.Context, entityType string, entityID uint) ([]models.Assignment, error)
	FindCurrentByDepartment(ctx context.Context, departmentID uint) ([]models.Assignment, error)
	CountCurrentByDepartment(ctx context.Context, departmentID uint, entityType string) (int64, error)
	CountDistinctEntities(ctx context.Context, departmentID uint) (int64, error)
	CountStartedSince(ctx context.Context, departmentID uint, since time.Time) (int64, error)
	FindDuplicateCurrent(ctx context.Context) ([]models.Assignment, error)
	DeleteByEntity(ctx context.Context, entityType string, entityID uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).First(&assignment, id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindCurrent(ctx context.Context, entityType string, entityID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND is_current", entityType, entityID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindCurrentForUpdate locks the entity's current row for the remainder of
// the surrounding transaction. Must only be called through a TxManager.
func (r *assignmentRepository) FindCurrentForUpdate(ctx context.Context, entityType string, entityID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entity_type = ? AND entity_id = ? AND is_current", entityType, entityID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Close supersedes an open record. The is_current guard makes the update a
// no-op if another writer already closed the row; callers treat zero affected
// rows as a lost race.
func (r *assignmentRepository) Close(ctx context.Context, id uint, endedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND is_current", id).
		Updates(map[string]interface{}{
			"is_current": false,
			"ended_at":   endedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) UpdateReason(ctx context.Context, id uint, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ?", id).
		Update("reason", reason).Error
}

func (r *assignmentRepository) HistoryOf(ctx context.Context, entityType string, entityID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("started_at DESC, id DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindCurrentByDepartment(ctx context.Context, departmentID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND is_current", departmentID).
		Order("started_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) CountCurrentByDepartment(ctx context.Context, departmentID uint, entityType string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("department_id = ? AND is_current", departmentID)
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *assignmentRepository) CountDistinctEntities(ctx context.Context, departmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("department_id = ?", departmentID).
		Distinct("entity_type", "entity_id").
		Count(&count).Error
	return count, err
}

func (r *assignmentRepository) CountStartedSince(ctx context.Context, departmentID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("department_id = ? AND started_at >= ?", departmentID, since).
		Count(&count).Error
	return count, err
}

// FindDuplicateCurrent returns current rows for entities with more than one
// open record. The partial unique index makes this impossible to create, so
// any hit means the index is missing or was bypassed; the integrity sweep
// reports them.
func (r *assignmentRepository) FindDuplicateCurrent(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("is_current AND (entity_type, entity_id) IN (?)",
			r.db.Model(&models.Assignment{}).
				Select("entity_type, entity_id").
				Where("is_current").
				Group("entity_type, entity_id").
				Having("COUNT(*) > 1"),
		).
		Order("entity_type, entity_id, id").
		Find(&assignments).Error
	return assignments, err
}

// DeleteByEntity removes an entity's ledger rows. Only used as cascading
// cleanup when the entity itself is removed from the system.
func (r *assignmentRepository) DeleteByEntity(ctx context.Context, entityType string, entityID uint) error {
	return r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Delete(&models.Assignment{}).Error
}
