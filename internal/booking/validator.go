package booking

import (
	"dental-clinic-server/internal/clock"
	"dental-clinic-server/internal/models"
)

// Store is the read side of the appointment table the rules run against.
// Implementations answer point/range predicates only; the validator never
// writes.
type Store interface {
	// DoctorSlotTaken reports whether a non-cancelled appointment other
	// than excludeID holds the (doctorID, date, timeOfDay) slot.
	DoctorSlotTaken(doctorID, date, timeOfDay, excludeID string) (bool, error)
	// PatientSlotTaken is the symmetric check keyed on the patient.
	PatientSlotTaken(patientID, date, timeOfDay, excludeID string) (bool, error)
	// PatientHasActiveUpcoming reports whether the patient holds a
	// pending or confirmed appointment other than excludeID dated today
	// or later.
	PatientHasActiveUpcoming(patientID, today, excludeID string) (bool, error)
}

// Candidate is a proposed appointment, new or edited, in canonical form.
// ExcludeID carries the id of the appointment being updated so its own row
// does not count as a conflict; it is empty for a new booking.
type Candidate struct {
	ExcludeID string
	DoctorID  string
	PatientID string
	Date      string // DateLayout
	Time      string // TimeLayout
	Status    models.AppointmentStatus
}

// Validator decides whether a candidate appointment may be committed.
type Validator struct {
	store Store
	clk   clock.Clock
}

// NewValidator creates a validator over an appointment store and a clock.
// The clock supplies "today" explicitly so the date rule is deterministic
// under test.
func NewValidator(store Store, clk clock.Clock) *Validator {
	return &Validator{store: store, clk: clk}
}

// Validate runs all four rule families independently and collects every
// violation; it never short-circuits on the first failure. A nil RuleErrors
// means the candidate may be persisted. The error return is reserved for
// store failures.
func (v *Validator) Validate(c Candidate) (*RuleErrors, error) {
	errs := NewRuleErrors()
	today := clock.Today(v.clk)

	// 1. The date cannot be in the past.
	if c.Date < today {
		errs.Add(FieldDate, "appointment date cannot be in the past")
	}

	// 2. The doctor cannot hold two appointments in the same slot.
	taken, err := v.store.DoctorSlotTaken(c.DoctorID, c.Date, c.Time, c.ExcludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs.Add(FieldTime, "the doctor already has an appointment at this date and time")
	}

	// 3. Neither can the patient.
	taken, err = v.store.PatientSlotTaken(c.PatientID, c.Date, c.Time, c.ExcludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs.Add(FieldTime, "the patient already has an appointment at this date and time")
	}

	// 4. At most one pending/confirmed appointment dated today or later
	// per patient, independent of the slot being requested.
	active, err := v.store.PatientHasActiveUpcoming(c.PatientID, today, c.ExcludeID)
	if err != nil {
		return nil, err
	}
	if active {
		errs.Add(FieldPatient, "the patient already has an upcoming appointment and cannot book another")
	}

	if errs.HasErrors() {
		return errs, nil
	}
	return nil, nil
}
