package models

import (
	"fmt"
	"strings"
)

// AppointmentStatus represents the status of an appointment.
// Only the English spellings are ever stored; the Arabic spellings used by
// the clinic front desk are accepted on input and exposed as display labels.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var statusSynonyms = map[string]AppointmentStatus{
	"pending":   StatusPending,
	"confirmed": StatusConfirmed,
	"completed": StatusCompleted,
	"cancelled": StatusCancelled,
	"معلق":      StatusPending,
	"مؤكد":      StatusConfirmed,
	"منجز":      StatusCompleted,
	"ملغي":      StatusCancelled,
}

var statusArabicLabels = map[AppointmentStatus]string{
	StatusPending:   "معلق",
	StatusConfirmed: "مؤكد",
	StatusCompleted: "منجز",
	StatusCancelled: "ملغي",
}

// ParseStatus normalizes an English or Arabic status spelling to the
// canonical value.
func ParseStatus(s string) (AppointmentStatus, error) {
	status, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return status, nil
}

// ArabicLabel returns the localized display label for a status.
func (s AppointmentStatus) ArabicLabel() string {
	return statusArabicLabels[s]
}

// IsActive reports whether the status counts toward the
// one-upcoming-appointment-per-patient rule.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment represents a scheduled visit for a patient with a doctor.
// Date and Time are stored in canonical text form ("2006-01-02" and
// "15:04:05") so that (date, time) ordering is plain lexicographic
// comparison both in SQL and in Go.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index;not null" json:"patient"`
	DoctorID  string            `gorm:"size:36;index;not null" json:"doctor"`
	Date      string            `gorm:"type:char(10);index;not null" json:"date"`
	Time      string            `gorm:"type:char(8);not null" json:"-"`
	Status    AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Reason    string            `gorm:"type:text" json:"reason,omitempty"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}
