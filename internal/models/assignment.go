package models

import (
	"time"
)

// Assignment represents one placement event: an entity (patient or staff
// member) attached to a department for a span of time. Rows are append-only;
// a row is mutated exactly once, when it is superseded.
type Assignment struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	EntityType   string     `json:"entity_type" gorm:"size:20;not null;index:idx_assignments_entity,priority:1;uniqueIndex:idx_assignments_current,priority:1,where:is_current"`
	EntityID     uint       `json:"entity_id" gorm:"not null;index:idx_assignments_entity,priority:2;uniqueIndex:idx_assignments_current,priority:2,where:is_current"`
	DepartmentID uint       `json:"department_id" gorm:"not null;index"`
	IsCurrent    bool       `json:"is_current" gorm:"not null;default:false"`
	StartedAt    time.Time  `json:"started_at" gorm:"not null"`
	EndedAt      *time.Time `json:"ended_at"`
	Reason       string     `json:"reason" gorm:"size:50"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Associations
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

// TableName specifies the table name for Assignment
func (Assignment) TableName() string {
	return "assignments"
}

// Entity type constants
const (
	EntityPatient = "patient"
	EntityStaff   = "staff"
)

// Reason constants (transfer categories and staff position codes)
const (
	ReasonAdmission = "admission"
	ReasonTransfer  = "transfer"
	ReasonDischarge = "discharge"
	ReasonRotation  = "rotation"
	ReasonHire      = "hire"
	ReasonResign    = "resign"
)

// ValidEntityType reports whether t is a known entity type
func ValidEntityType(t string) bool {
	return t == EntityPatient || t == EntityStaff
}

// IsOpen returns true while the assignment is the entity's current placement
func (a *Assignment) IsOpen() bool {
	return a.IsCurrent && a.EndedAt == nil
}

// AssignmentResponse is the JSON response format for assignments
type AssignmentResponse struct {
	ID           uint       `json:"id"`
	EntityType   string     `json:"entity_type"`
	EntityID     uint       `json:"entity_id"`
	DepartmentID uint       `json:"department_id"`
	IsCurrent    bool       `json:"is_current"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	Reason       string     `json:"reason"`
}

// ToResponse converts Assignment to AssignmentResponse
func (a *Assignment) ToResponse() AssignmentResponse {
	return AssignmentResponse{
		ID:           a.ID,
		EntityType:   a.EntityType,
		EntityID:     a.EntityID,
		DepartmentID: a.DepartmentID,
		IsCurrent:    a.IsCurrent,
		StartedAt:    a.StartedAt,
		EndedAt:      a.EndedAt,
		Reason:       a.Reason,
	}
}
