package repository

import (
	"context"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"

	"gorm.io/gorm"
)

// AuditRepository defines the interface for audit trail data access.
// The trail is append-only: the interface deliberately has no update or
// delete methods.
type AuditRepository interface {
	CreateBatch(ctx context.Context, entries []models.AuditEntry) error
	HistoryFor(ctx context.Context, tableName string, recordID uint) ([]models.AuditEntry, error)
	RecentActivity(ctx context.Context, since time.Time, tableName string) ([]models.AuditEntry, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateBatch(ctx context.Context, entries []models.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *auditRepository) HistoryFor(ctx context.Context, tableName string, recordID uint) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND record_id = ?", tableName, recordID).
		Order("changed_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func (r *auditRepository) RecentActivity(ctx context.Context, since time.Time, tableName string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	q := r.db.WithContext(ctx).
		Preload("ChangedBy").
		Where("changed_at >= ?", since)
	if tableName != "" {
		q = q.Where("table_name = ?", tableName)
	}
	err := q.Order("changed_at DESC, id DESC").Find(&entries).Error
	return entries, err
}

func (r *auditRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AuditEntry{}).
		Where("changed_at >= ?", since).
		Count(&count).Error
	return count, err
}
