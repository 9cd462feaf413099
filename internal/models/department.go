package models

import (
	"time"
)

// Department represents a department, the only placement target modeled
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	Floor     string    `gorm:"size:20" json:"floor"`
	BedCount  int       `gorm:"default:0" json:"bed_count"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Department
func (Department) TableName() string {
	return "departments"
}

// DepartmentResponse is the JSON response format for departments
type DepartmentResponse struct {
	ID       uint   `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Floor    string `json:"floor"`
	BedCount int    `json:"bed_count"`
	Active   bool   `json:"active"`
}

// ToResponse converts Department to DepartmentResponse
func (d *Department) ToResponse() DepartmentResponse {
	return DepartmentResponse{
		ID:       d.ID,
		Code:     d.Code,
		Name:     d.Name,
		Floor:    d.Floor,
		BedCount: d.BedCount,
		Active:   d.Active,
	}
}

// DepartmentStats holds occupancy counts for a department
type DepartmentStats struct {
	DepartmentID     uint  `json:"department_id"`
	CurrentOccupants int64 `json:"current_occupants"`
	CurrentStaff     int64 `json:"current_staff"`
	LifetimeEntities int64 `json:"lifetime_entities"`
	RecentAdmissions int64 `json:"recent_admissions"`
	WindowDays       int   `json:"window_days"`
}
