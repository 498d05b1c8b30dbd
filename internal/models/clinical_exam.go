package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClinicalExam is one examination session for a patient, optionally linked
// to the appointment it took place in.
type ClinicalExam struct {
	BaseModel
	PatientID         string  `gorm:"size:36;index;not null" json:"patient"`
	DoctorID          *string `gorm:"size:36;index" json:"doctor,omitempty"`
	AppointmentID     *string `gorm:"size:36;index" json:"appointment,omitempty"`
	Complaint         string  `gorm:"type:text" json:"complaint,omitempty"`
	MedicalAdvice     string  `gorm:"type:text" json:"medicalAdvice,omitempty"`
	PrescriptionNotes string  `gorm:"type:text" json:"prescriptionNotes,omitempty"`

	// Relations
	Patient     Patient                `gorm:"foreignKey:PatientID" json:"-"`
	Doctor      *Doctor                `gorm:"foreignKey:DoctorID" json:"-"`
	Appointment *Appointment           `gorm:"foreignKey:AppointmentID" json:"-"`
	Procedures  []Procedure            `gorm:"foreignKey:ClinicalExamID" json:"-"`
	Medications []PrescribedMedication `gorm:"foreignKey:ClinicalExamID" json:"-"`
}

// ProcedureCategory groups dental procedure definitions.
type ProcedureCategory struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// DentalProcedure is a reusable procedure definition with a default price.
type DentalProcedure struct {
	BaseModel
	Name         string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description  string  `gorm:"type:text" json:"description,omitempty"`
	DefaultPrice float64 `gorm:"type:decimal(10,2);default:0" json:"defaultPrice"`
	IsActive     bool    `gorm:"default:true" json:"isActive"`
	CategoryID   *string `gorm:"size:36;index" json:"category,omitempty"`

	Category *ProcedureCategory `gorm:"foreignKey:CategoryID" json:"-"`
}

// Tooth type values used by the seeded FDI dictionary
const (
	ToothTypePermanent = "permanent"
	ToothTypeDeciduous = "deciduous"
)

// Toothcode is one entry of the FDI tooth-numbering dictionary.
type Toothcode struct {
	BaseModel
	ToothNumber string `gorm:"size:5;uniqueIndex;not null" json:"toothNumber"`
	ToothType   string `gorm:"size:20" json:"toothType"`
	Description string `gorm:"size:255" json:"description,omitempty"`
}

// SeedToothcodes fills the toothcode dictionary with the FDI numbering:
// quadrants 1-4 positions 1-8 for permanent teeth, quadrants 5-8
// positions 1-5 for deciduous teeth. Existing rows are left untouched.
func SeedToothcodes(db *gorm.DB) error {
	var codes []Toothcode
	for quadrant := 1; quadrant <= 4; quadrant++ {
		for position := 1; position <= 8; position++ {
			codes = append(codes, Toothcode{
				ToothNumber: fmt.Sprintf("%d%d", quadrant, position),
				ToothType:   ToothTypePermanent,
			})
		}
	}
	for quadrant := 5; quadrant <= 8; quadrant++ {
		for position := 1; position <= 5; position++ {
			codes = append(codes, Toothcode{
				ToothNumber: fmt.Sprintf("%d%d", quadrant, position),
				ToothType:   ToothTypeDeciduous,
			})
		}
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&codes).Error
}

// Procedure status values
const (
	ProcedureStatusPlanned    = "planned"
	ProcedureStatusInProgress = "in_progress"
	ProcedureStatusDone       = "done"
)

// Procedure is a procedure performed (or planned) during a clinical exam.
// Name, description and cost default from the linked definition when blank.
type Procedure struct {
	BaseModel
	ClinicalExamID string  `gorm:"size:36;index;not null" json:"clinicalExam"`
	DefinitionID   string  `gorm:"size:36;index;not null" json:"definition"`
	CategoryID     *string `gorm:"size:36;index" json:"category,omitempty"`
	Name           string  `gorm:"size:100" json:"name"`
	Description    string  `gorm:"type:text" json:"description,omitempty"`
	Cost           float64 `gorm:"type:decimal(10,2);default:0" json:"cost"`
	Status         string  `gorm:"size:20;default:'planned'" json:"status"`

	// Relations
	ClinicalExam ClinicalExam         `gorm:"foreignKey:ClinicalExamID" json:"-"`
	Definition   DentalProcedure      `gorm:"foreignKey:DefinitionID" json:"-"`
	Category     *ProcedureCategory   `gorm:"foreignKey:CategoryID" json:"-"`
	ToothLinks   []ProcedureToothcode `gorm:"foreignKey:ProcedureID" json:"-"`
}

// ProcedureToothcode links a performed procedure to one tooth.
type ProcedureToothcode struct {
	BaseModel
	ProcedureID   string  `gorm:"size:36;index;not null" json:"procedure"`
	ToothcodeID   string  `gorm:"size:36;index;not null" json:"toothcode"`
	PerformedByID *string `gorm:"size:36" json:"performedBy,omitempty"`
	Notes         string  `gorm:"type:text" json:"notes,omitempty"`

	Procedure   Procedure `gorm:"foreignKey:ProcedureID" json:"-"`
	Toothcode   Toothcode `gorm:"foreignKey:ToothcodeID" json:"-"`
	PerformedBy *Doctor   `gorm:"foreignKey:PerformedByID" json:"-"`
}
