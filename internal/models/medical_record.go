package models

import (
	"time"
)

// MedicalRecord is the per-patient clinical file everything else hangs off.
type MedicalRecord struct {
	BaseModel
	PatientID string `gorm:"size:36;uniqueIndex;not null" json:"patient"`

	// Relations
	Patient     Patient      `gorm:"foreignKey:PatientID" json:"-"`
	Attachments []Attachment `gorm:"foreignKey:MedicalRecordID" json:"-"`
}

// AttachmentType represents the kind of file attached to a medical record
type AttachmentType string

const (
	AttachmentXRay   AttachmentType = "xray"
	AttachmentReport AttachmentType = "report"
	AttachmentImage  AttachmentType = "image"
	AttachmentOther  AttachmentType = "other"
)

// Attachment represents a file attached to a medical record
type Attachment struct {
	BaseModel
	MedicalRecordID string         `gorm:"size:36;index;not null" json:"medicalRecord"`
	FileName        string         `gorm:"size:255;not null" json:"fileName"`
	FileType        string         `gorm:"size:100" json:"fileType"` // MIME type
	Type            AttachmentType `gorm:"size:20;default:'other'" json:"type"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	FileData        []byte         `gorm:"type:longblob" json:"-"`

	MedicalRecord MedicalRecord `gorm:"foreignKey:MedicalRecordID" json:"-"`
}

// Disease is a dictionary entry for chronic diseases.
type Disease struct {
	BaseModel
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// PatientDisease links a patient to a chronic disease.
type PatientDisease struct {
	BaseModel
	PatientID   string     `gorm:"size:36;index;not null" json:"patient"`
	DiseaseID   string     `gorm:"size:36;index;not null" json:"disease"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	DiagnosedAt *time.Time `json:"diagnosedAt,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Disease Disease `gorm:"foreignKey:DiseaseID" json:"-"`
}

// PatientAllergy links a patient to a medication they are allergic to.
type PatientAllergy struct {
	BaseModel
	PatientID    string `gorm:"size:36;index;not null" json:"patient"`
	MedicationID string `gorm:"size:36;index;not null" json:"medication"`

	Patient    Patient    `gorm:"foreignKey:PatientID" json:"-"`
	Medication Medication `gorm:"foreignKey:MedicationID" json:"-"`
}

// Medication is a drug available for prescription.
type Medication struct {
	BaseModel
	Name            string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description     string `gorm:"type:text" json:"description,omitempty"`
	DefaultDoseUnit string `gorm:"size:50" json:"defaultDoseUnit,omitempty"`
	IsActive        bool   `gorm:"default:true" json:"isActive"`
}

// PrescribedMedication is one prescription line attached to a clinical exam.
type PrescribedMedication struct {
	BaseModel
	ClinicalExamID string  `gorm:"size:36;index;not null" json:"clinicalExam"`
	MedicationID   string  `gorm:"size:36;index;not null" json:"medication"`
	TimesPerDay    int     `gorm:"not null" json:"timesPerDay"`
	DoseUnit       string  `gorm:"size:50;not null" json:"doseUnit"`
	NumberOfDays   int     `gorm:"not null" json:"numberOfDays"`
	Notes          string  `gorm:"type:text" json:"notes,omitempty"`
	PrescribedByID *string `gorm:"size:36" json:"prescribedBy,omitempty"`

	ClinicalExam ClinicalExam `gorm:"foreignKey:ClinicalExamID" json:"-"`
	Medication   Medication   `gorm:"foreignKey:MedicationID" json:"-"`
	PrescribedBy *Doctor      `gorm:"foreignKey:PrescribedByID" json:"-"`
}

// MedicationPackage is a reusable bundle of prescription lines, typically
// assembled once per disease and applied to exams in one action.
type MedicationPackage struct {
	BaseModel
	Name        string  `gorm:"size:255;not null" json:"name"`
	DiseaseID   *string `gorm:"size:36;index" json:"disease,omitempty"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool    `gorm:"default:true" json:"isActive"`

	Disease *Disease                `gorm:"foreignKey:DiseaseID" json:"-"`
	Items   []MedicationPackageItem `gorm:"foreignKey:PackageID" json:"items"`
}

// MedicationPackageItem is one line of a medication package.
type MedicationPackageItem struct {
	BaseModel
	PackageID    string `gorm:"size:36;index;not null" json:"-"`
	MedicationID string `gorm:"size:36;index;not null" json:"medication"`
	TimesPerDay  int    `gorm:"not null" json:"timesPerDay"`
	DoseUnit     string `gorm:"size:50;not null" json:"doseUnit"`
	NumberOfDays int    `gorm:"not null" json:"numberOfDays"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`

	Medication Medication `gorm:"foreignKey:MedicationID" json:"-"`
}

// Package application modes
const (
	PackageModeAppend  = "append"
	PackageModeReplace = "replace"
)

// AppliedMedicationPackage records that a package was applied to an exam.
type AppliedMedicationPackage struct {
	BaseModel
	ClinicalExamID string  `gorm:"size:36;index;not null" json:"clinicalExam"`
	PackageID      string  `gorm:"size:36;index;not null" json:"package"`
	PrescribedByID *string `gorm:"size:36" json:"prescribedBy,omitempty"`
	Mode           string  `gorm:"size:10;not null" json:"mode"`

	ClinicalExam ClinicalExam      `gorm:"foreignKey:ClinicalExamID" json:"-"`
	Package      MedicationPackage `gorm:"foreignKey:PackageID" json:"-"`
	PrescribedBy *Doctor           `gorm:"foreignKey:PrescribedByID" json:"-"`
}
