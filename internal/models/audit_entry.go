package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one immutable log row describing a single field-level or
// whole-row change to a tracked record. Entries are never updated or deleted;
// a correction is itself a new entry for the same record.
type AuditEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ChangeSetID uuid.UUID `json:"change_set_id" gorm:"type:uuid;not null;index"`
	TableName   string    `json:"table_name" gorm:"size:50;not null;index:idx_audit_entries_record,priority:1"`
	RecordID    uint      `json:"record_id" gorm:"not null;index:idx_audit_entries_record,priority:2"`
	Operation   string    `json:"operation" gorm:"size:10;not null"`
	FieldName   *string   `json:"field_name" gorm:"size:50"`
	OldValue    string    `json:"old_value" gorm:"type:text"`
	NewValue    string    `json:"new_value" gorm:"type:text"`
	ChangedByID uint      `json:"changed_by_id" gorm:"not null"`
	ChangedAt   time.Time `json:"changed_at" gorm:"not null;index"`
	Reason      string    `json:"reason" gorm:"type:text"`

	// Associations
	ChangedBy *Staff `json:"changed_by,omitempty" gorm:"foreignKey:ChangedByID"`
}

// Operation constants
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// FieldChange is one field-level diff submitted to the audit trail.
// Changes whose old and new values are equal are dropped before writing.
type FieldChange struct {
	FieldName string
	OldValue  string
	NewValue  string
}

// AuditEntryResponse is the JSON response format for audit entries
type AuditEntryResponse struct {
	ID          uint      `json:"id"`
	ChangeSetID uuid.UUID `json:"change_set_id"`
	TableName   string    `json:"table_name"`
	RecordID    uint      `json:"record_id"`
	Operation   string    `json:"operation"`
	FieldName   *string   `json:"field_name"`
	OldValue    string    `json:"old_value"`
	NewValue    string    `json:"new_value"`
	ChangedByID uint      `json:"changed_by_id"`
	ChangedAt   time.Time `json:"changed_at"`
	Reason      string    `json:"reason"`
}

// ToResponse converts AuditEntry to AuditEntryResponse
func (e *AuditEntry) ToResponse() AuditEntryResponse {
	return AuditEntryResponse{
		ID:          e.ID,
		ChangeSetID: e.ChangeSetID,
		TableName:   e.TableName,
		RecordID:    e.RecordID,
		Operation:   e.Operation,
		FieldName:   e.FieldName,
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		ChangedByID: e.ChangedByID,
		ChangedAt:   e.ChangedAt,
		Reason:      e.Reason,
	}
}
