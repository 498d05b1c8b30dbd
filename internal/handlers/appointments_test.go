package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dental-clinic-server/internal/booking"
	"dental-clinic-server/internal/models"
)

func TestParseDateField(t *testing.T) {
	errs := booking.NewRuleErrors()
	assert.Equal(t, "2025-06-16", parseDateField("2025-06-16", errs))
	assert.False(t, errs.HasErrors())

	for _, bad := range []string{"", "16/06/2025", "2025-13-01", "tomorrow"} {
		errs := booking.NewRuleErrors()
		parseDateField(bad, errs)
		assert.True(t, errs.Has(booking.FieldDate), "input %q", bad)
	}
}

func TestParseTimeField(t *testing.T) {
	errs := booking.NewRuleErrors()
	assert.Equal(t, "14:30:00", parseTimeField("2:30 م", errs))
	assert.Equal(t, "09:00:00", parseTimeField("9 صباحا", errs))
	assert.False(t, errs.HasErrors())

	errs = booking.NewRuleErrors()
	parseTimeField("half past two", errs)
	assert.True(t, errs.Has(booking.FieldTime))
}

func TestNewAppointmentView(t *testing.T) {
	appointment := models.Appointment{
		PatientID: "p1",
		DoctorID:  "d1",
		Date:      "2025-06-16",
		Time:      "14:30:00",
		Status:    models.StatusConfirmed,
		Reason:    "toothache",
		Patient:   models.Patient{FirstName: "Sara", LastName: "Haddad"},
		Doctor: models.Doctor{
			User: models.User{FirstName: "Omar", LastName: "Khalil"},
		},
	}
	appointment.ID = "a1"
	appointment.CreatedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	view := newAppointmentView(&appointment)
	assert.Equal(t, "a1", view.ID)
	assert.Equal(t, "Sara Haddad", view.PatientDisplay)
	assert.Equal(t, "Omar Khalil", view.DoctorDisplay)
	assert.Equal(t, "02:30 PM", view.Time)
	assert.Equal(t, "confirmed", view.Status)
	assert.Equal(t, "مؤكد", view.StatusDisplay)
}
