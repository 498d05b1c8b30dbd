package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/clock"
	"dental-clinic-server/internal/models"
)

// memoryStore answers the rule predicates from an in-memory appointment
// list with the same semantics as the SQL store.
type memoryStore struct {
	appointments []models.Appointment
}

func (m *memoryStore) add(id, doctorID, patientID, date, timeOfDay string, status models.AppointmentStatus) {
	appt := models.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      timeOfDay,
		Status:    status,
	}
	appt.ID = id
	m.appointments = append(m.appointments, appt)
}

func (m *memoryStore) setStatus(id string, status models.AppointmentStatus) {
	for i := range m.appointments {
		if m.appointments[i].ID == id {
			m.appointments[i].Status = status
		}
	}
}

func (m *memoryStore) DoctorSlotTaken(doctorID, date, timeOfDay, excludeID string) (bool, error) {
	for _, a := range m.appointments {
		if a.ID != excludeID && a.DoctorID == doctorID && a.Date == date && a.Time == timeOfDay &&
			a.Status != models.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) PatientSlotTaken(patientID, date, timeOfDay, excludeID string) (bool, error) {
	for _, a := range m.appointments {
		if a.ID != excludeID && a.PatientID == patientID && a.Date == date && a.Time == timeOfDay &&
			a.Status != models.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) PatientHasActiveUpcoming(patientID, today, excludeID string) (bool, error) {
	for _, a := range m.appointments {
		if a.ID == excludeID || a.PatientID != patientID || !a.Status.IsActive() {
			continue
		}
		if a.Date >= today {
			return true, nil
		}
	}
	return false, nil
}

var today = time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC) // a Monday

func newTestValidator(store *memoryStore) *Validator {
	return NewValidator(store, clock.NewFixed(today))
}

func day(offset int) string {
	return today.AddDate(0, 0, offset).Format(DateLayout)
}

func TestValidateAcceptsFreeSlot(t *testing.T) {
	v := newTestValidator(&memoryStore{})

	errs, err := v.Validate(Candidate{
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      day(1),
		Time:      "14:00:00",
		Status:    models.StatusPending,
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidateRejectsPastDate(t *testing.T) {
	v := newTestValidator(&memoryStore{})

	errs, err := v.Validate(Candidate{
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      day(-1),
		Time:      "14:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.True(t, errs.Has(FieldDate))
}

func TestValidateAcceptsToday(t *testing.T) {
	// No grace period: today itself is still bookable.
	v := newTestValidator(&memoryStore{})

	errs, err := v.Validate(Candidate{
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      day(0),
		Time:      "14:00:00",
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidateRejectsDoctorConflict(t *testing.T) {
	store := &memoryStore{}
	store.add("appt-1", "doc-1", "pat-1", day(1), "14:00:00", models.StatusPending)
	v := newTestValidator(store)

	// Same doctor, same slot, different patient: slot text was "2 pm" on
	// the wire but both normalize to 14:00:00.
	errs, err := v.Validate(Candidate{
		DoctorID:  "doc-1",
		PatientID: "pat-2",
		Date:      day(1),
		Time:      "14:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.True(t, errs.Has(FieldTime))
}

func TestValidateRejectsPatientConflict(t *testing.T) {
	store := &memoryStore{}
	store.add("appt-1", "doc-1", "pat-1", day(1), "14:00:00", models.StatusConfirmed)
	v := newTestValidator(store)

	errs, err := v.Validate(Candidate{
		DoctorID:  "doc-2",
		PatientID: "pat-1",
		Date:      day(1),
		Time:      "14:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.True(t, errs.Has(FieldTime))
	// The overbooking rule fires too: the existing active appointment sits
	// at the same (date, time).
	assert.True(t, errs.Has(FieldPatient))
}

func TestValidateRejectsOverbookedPatient(t *testing.T) {
	// Patient holds a confirmed appointment next Monday; booking the
	// following Tuesday while Monday's is still active is rejected, even
	// though the new slot is later.
	store := &memoryStore{}
	store.add("appt-1", "doc-1", "pat-1", day(7), "10:00:00", models.StatusConfirmed)
	v := newTestValidator(store)

	errs, err := v.Validate(Candidate{
		DoctorID:  "doc-2",
		PatientID: "pat-1",
		Date:      day(8),
		Time:      "10:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.True(t, errs.Has(FieldPatient))
	assert.False(t, errs.Has(FieldTime))

	// Cancel Monday, retry Tuesday: succeeds.
	store.setStatus("appt-1", models.StatusCancelled)

	errs, err = v.Validate(Candidate{
		DoctorID:  "doc-2",
		PatientID: "pat-1",
		Date:      day(8),
		Time:      "10:00:00",
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidateOverbookingIsMonotonic(t *testing.T) {
	// An active upcoming appointment blocks every other candidate slot for
	// that patient, earlier or later; a completed one blocks none.
	store := &memoryStore{}
	store.add("appt-1", "doc-1", "pat-1", day(5), "12:00:00", models.StatusPending)
	v := newTestValidator(store)

	slots := []struct{ date, tod string }{
		{day(1), "09:00:00"},
		{day(5), "11:59:59"},
		{day(5), "12:00:00"},
		{day(9), "12:00:01"},
	}
	for _, slot := range slots {
		errs, err := v.Validate(Candidate{
			DoctorID: "doc-2", PatientID: "pat-1", Date: slot.date, Time: slot.tod,
		})
		require.NoError(t, err)
		require.NotNil(t, errs, "slot %s %s should be blocked", slot.date, slot.tod)
		assert.True(t, errs.Has(FieldPatient))
	}

	store.setStatus("appt-1", models.StatusCompleted)

	errs, err := v.Validate(Candidate{
		DoctorID: "doc-2", PatientID: "pat-1", Date: day(9), Time: "12:00:01",
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidateIgnoresCancelledAppointments(t *testing.T) {
	store := &memoryStore{}
	store.add("appt-1", "doc-1", "pat-1", day(7), "10:00:00", models.StatusConfirmed)
	v := newTestValidator(store)

	errs, err := v.Validate(Candidate{
		DoctorID: "doc-1", PatientID: "pat-1", Date: day(7), Time: "10:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, errs)

	// Cancelling the existing appointment frees the slot for every rule.
	store.setStatus("appt-1", models.StatusCancelled)

	errs, err = v.Validate(Candidate{
		DoctorID: "doc-1", PatientID: "pat-1", Date: day(7), Time: "10:00:00",
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidateExcludesOwnRowOnUpdate(t *testing.T) {
	store := &memoryStore{}
	store.add("appt-1", "doc-1", "pat-1", day(2), "10:00:00", models.StatusPending)
	v := newTestValidator(store)

	// Re-validating the same appointment must not conflict with itself.
	errs, err := v.Validate(Candidate{
		ExcludeID: "appt-1",
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      day(2),
		Time:      "10:00:00",
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	store := &memoryStore{}
	store.add("appt-1", "doc-1", "pat-1", day(-1), "10:00:00", models.StatusPending)
	v := newTestValidator(store)

	// Past date plus doctor conflict plus patient conflict in one shot;
	// every violated rule must be reported together.
	errs, err := v.Validate(Candidate{
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      day(-1),
		Time:      "10:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.True(t, errs.Has(FieldDate))
	assert.True(t, errs.Has(FieldTime))
	assert.Len(t, errs.Fields[FieldTime], 2)
	// The conflicting appointment is in the past, so the overbooking rule
	// stays quiet.
	assert.False(t, errs.Has(FieldPatient))
}

func TestRuleErrorsError(t *testing.T) {
	errs := NewRuleErrors()
	errs.Add(FieldTime, "slot taken")
	errs.Add(FieldDate, "in the past")

	assert.Equal(t, "date: in the past; time: slot taken", errs.Error())
}
