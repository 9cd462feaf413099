package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs a unit of work inside a single database transaction.
// The repositories passed to fn are bound to that transaction; if fn returns
// an error every write made through them is rolled back.
type TxManager interface {
	Do(ctx context.Context, fn func(r *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager backed by GORM transactions
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(r *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
