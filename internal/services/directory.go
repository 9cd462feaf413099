package services

import (
	"context"

	"github.com/rcabrera/medtrack-api/internal/repository"
)

// EntityDirectory resolves whether referenced patients, staff and departments
// exist. The ledger and trail validate every reference through it instead of
// reaching into ambient state; tests substitute their own implementation.
type EntityDirectory interface {
	PatientExists(ctx context.Context, id uint) (bool, error)
	StaffExists(ctx context.Context, id uint) (bool, error)
	DepartmentActive(ctx context.Context, id uint) (bool, error)
}

type repoDirectory struct {
	patients    repository.PatientRepository
	staff       repository.StaffRepository
	departments repository.DepartmentRepository
}

// NewEntityDirectory creates an EntityDirectory backed by the repositories
func NewEntityDirectory(patients repository.PatientRepository, staff repository.StaffRepository, departments repository.DepartmentRepository) EntityDirectory {
	return &repoDirectory{
		patients:    patients,
		staff:       staff,
		departments: departments,
	}
}

func (d *repoDirectory) PatientExists(ctx context.Context, id uint) (bool, error) {
	return d.patients.Exists(ctx, id)
}

func (d *repoDirectory) StaffExists(ctx context.Context, id uint) (bool, error) {
	return d.staff.ActiveExists(ctx, id)
}

func (d *repoDirectory) DepartmentActive(ctx context.Context, id uint) (bool, error) {
	return d.departments.ActiveExists(ctx, id)
}
