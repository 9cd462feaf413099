package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff represents a staff member. Staff are both assignable entities
// (tracked by the assignment ledger) and actors (every audited change is
// credited to a staff member).
type Staff struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	FullName          string     `gorm:"not null" json:"full_name"`
	Role              string     `gorm:"default:clinician" json:"role"`
	Position          string     `gorm:"size:50" json:"position"`
	Phone             string     `json:"phone"`
	Status            string     `gorm:"default:active" json:"status"`
	LicenseNumber     string     `gorm:"column:license_number;uniqueIndex" json:"license_number"`
	DiscardedAt       *time.Time `gorm:"index" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Staff
func (Staff) TableName() string {
	return "staff"
}

// BeforeCreate hook for setting defaults
func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.Role == "" {
		s.Role = RoleClinician
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	return nil
}

// Role constants
const (
	RoleAdmin     = "admin"
	RoleClinician = "clinician"
	RoleAuditor   = "auditor"
)

// Status constants
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// IsAdmin returns true if the staff member has the admin role
func (s *Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsActive returns true if the staff member can act and be assigned
func (s *Staff) IsActive() bool {
	return s.Status == StatusActive && s.DiscardedAt == nil
}

// StaffResponse is the JSON response format for staff
type StaffResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	Position      string    `json:"position"`
	Phone         string    `json:"phone"`
	Status        string    `json:"status"`
	LicenseNumber string    `json:"license_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts Staff to StaffResponse
func (s *Staff) ToResponse() StaffResponse {
	return StaffResponse{
		ID:            s.ID,
		Email:         s.Email,
		FullName:      s.FullName,
		Role:          s.Role,
		Position:      s.Position,
		Phone:         s.Phone,
		Status:        s.Status,
		LicenseNumber: s.LicenseNumber,
		CreatedAt:     s.CreatedAt,
	}
}
