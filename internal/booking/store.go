package booking

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dental-clinic-server/internal/models"
)

// GormStore implements Store and Directory over the appointments, doctors
// and patients tables.
type GormStore struct {
	db      *gorm.DB
	locking bool
}

// NewGormStore creates a store over a database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Locked returns a view of the store whose conflict scans take FOR UPDATE
// row locks. Use it with a handle inside a transaction so that two racing
// bookings for the same slot serialize at the storage layer instead of both
// passing the check.
func (s *GormStore) Locked(tx *gorm.DB) *GormStore {
	return &GormStore{db: tx, locking: true}
}

func (s *GormStore) slotQuery(column, ownerID, date, timeOfDay, excludeID string) *gorm.DB {
	q := s.db.Model(&models.Appointment{}).
		Where(column+" = ? AND date = ? AND time = ?", ownerID, date, timeOfDay).
		Where("status <> ?", models.StatusCancelled)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if s.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// DoctorSlotTaken implements Store.
func (s *GormStore) DoctorSlotTaken(doctorID, date, timeOfDay, excludeID string) (bool, error) {
	var count int64
	err := s.slotQuery("doctor_id", doctorID, date, timeOfDay, excludeID).Count(&count).Error
	return count > 0, err
}

// PatientSlotTaken implements Store.
func (s *GormStore) PatientSlotTaken(patientID, date, timeOfDay, excludeID string) (bool, error) {
	var count int64
	err := s.slotQuery("patient_id", patientID, date, timeOfDay, excludeID).Count(&count).Error
	return count > 0, err
}

// PatientHasActiveUpcoming implements Store.
func (s *GormStore) PatientHasActiveUpcoming(patientID, today, excludeID string) (bool, error) {
	q := s.db.Model(&models.Appointment{}).
		Where("patient_id = ?", patientID).
		Where("status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Where("date >= ?", today)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if s.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// DoctorByID implements Directory.
func (s *GormStore) DoctorByID(id string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := s.db.Preload("User").First(&doctor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

// DoctorsByName implements Directory; the name match is against the linked
// staff user's first/last name, case-insensitive.
func (s *GormStore) DoctorsByName(firstName, lastName string) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := s.db.
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("LOWER(users.first_name) = ? AND LOWER(users.last_name) = ?",
			strings.ToLower(firstName), strings.ToLower(lastName)).
		Preload("User").
		Find(&doctors).Error
	return doctors, err
}

// PatientByID implements Directory.
func (s *GormStore) PatientByID(id string) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.First(&patient, "id = ? AND is_archived = ?", id, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// PatientsByName implements Directory.
func (s *GormStore) PatientsByName(firstName, lastName string) ([]models.Patient, error) {
	var patients []models.Patient
	err := s.db.
		Where("LOWER(first_name) = ? AND LOWER(last_name) = ? AND is_archived = ?",
			strings.ToLower(firstName), strings.ToLower(lastName), false).
		Find(&patients).Error
	return patients, err
}
