package models

import (
	"time"
)

// Patient represents a patient tracked by the assignment ledger
type Patient struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	MedicalRecNo string     `gorm:"column:medical_rec_no;uniqueIndex;not null" json:"medical_rec_no"`
	FullName     string     `gorm:"not null" json:"full_name"`
	Identity     string     `gorm:"uniqueIndex" json:"identity"`
	BirthDate    *time.Time `json:"birth_date"`
	Sex          string     `gorm:"size:10" json:"sex"`
	Phone        string     `json:"phone"`
	Address      *string    `json:"address"`
	BloodType    string     `gorm:"size:5" json:"blood_type"`
	Allergies    *string    `json:"allergies"`
	DiscardedAt  *time.Time `gorm:"index" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Patient
func (Patient) TableName() string {
	return "patients"
}

// IsDiscarded returns true if the patient is soft-deleted
func (p *Patient) IsDiscarded() bool {
	return p.DiscardedAt != nil
}

// PatientResponse is the JSON response format for patients
type PatientResponse struct {
	ID           uint       `json:"id"`
	MedicalRecNo string     `json:"medical_rec_no"`
	FullName     string     `json:"full_name"`
	Identity     string     `json:"identity"`
	BirthDate    *time.Time `json:"birth_date"`
	Sex          string     `json:"sex"`
	Phone        string     `json:"phone"`
	Address      *string    `json:"address"`
	BloodType    string     `json:"blood_type"`
	Allergies    *string    `json:"allergies"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToResponse converts Patient to PatientResponse
func (p *Patient) ToResponse() PatientResponse {
	return PatientResponse{
		ID:           p.ID,
		MedicalRecNo: p.MedicalRecNo,
		FullName:     p.FullName,
		Identity:     p.Identity,
		BirthDate:    p.BirthDate,
		Sex:          p.Sex,
		Phone:        p.Phone,
		Address:      p.Address,
		BloodType:    p.BloodType,
		Allergies:    p.Allergies,
		CreatedAt:    p.CreatedAt,
	}
}
