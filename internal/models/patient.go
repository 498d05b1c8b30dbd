package models

import (
	"time"
)

// Gender values accepted for patients
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Patient represents a patient of the clinic. Email is a pointer so an
// absent email is stored as NULL; the unique index then only constrains
// rows that actually carry one.
type Patient struct {
	BaseModel
	FirstName   string     `gorm:"size:100;not null;index" json:"firstName"`
	LastName    string     `gorm:"size:100;not null;index" json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      string     `gorm:"size:10" json:"gender,omitempty"`
	Phone       string     `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email       *string    `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`
	IsArchived  bool       `gorm:"default:false" json:"isArchived"`

	// Relations (not always preloaded)
	Appointments  []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
	ClinicalExams []ClinicalExam `gorm:"foreignKey:PatientID" json:"-"`
	MedicalRecord *MedicalRecord `gorm:"foreignKey:PatientID" json:"-"`
}

// FullName returns the display name used across appointment responses.
func (p *Patient) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
