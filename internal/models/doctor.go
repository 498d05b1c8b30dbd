package models

// Doctor holds the dentist profile linked to a staff user
type Doctor struct {
	BaseModel
	UserID         string  `gorm:"size:36;uniqueIndex" json:"userId"`
	Specialization string  `gorm:"size:100" json:"specialization,omitempty"`
	LicenseNumber  string  `gorm:"size:50;uniqueIndex;not null" json:"licenseNumber"`
	RevenueShare   float64 `gorm:"type:decimal(5,2);default:0" json:"revenueShare"`

	// Relations
	User         User          `gorm:"foreignKey:UserID" json:"-"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"-"`
}
