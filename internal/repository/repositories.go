package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Patient    PatientRepository
	Staff      StaffRepository
	Department DepartmentRepository
	Assignment AssignmentRepository
	Audit      AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Patient:    NewPatientRepository(db),
		Staff:      NewStaffRepository(db),
		Department: NewDepartmentRepository(db),
		Assignment: NewAssignmentRepository(db),
		Audit:      NewAuditRepository(db),
	}
}

// ListQuery holds common pagination and search parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
	}
}

// Offset returns the row offset for the query's page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}
