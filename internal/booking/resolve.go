package booking

import (
	"strings"

	"dental-clinic-server/internal/models"
)

// Directory looks up doctors and patients by id or by name parts. A nil
// record with a nil error means "no match"; ambiguity is the resolver's
// concern, so the name lookups return every match.
type Directory interface {
	DoctorByID(id string) (*models.Doctor, error)
	DoctorsByName(firstName, lastName string) ([]models.Doctor, error)
	PatientByID(id string) (*models.Patient, error)
	PatientsByName(firstName, lastName string) ([]models.Patient, error)
}

// Resolver turns a caller-supplied id or display name into a canonical
// record. Resolution is two-stage: exact id lookup, then a case-insensitive
// name search that must produce exactly one match.
type Resolver struct {
	dir Directory
}

// NewResolver creates a resolver over a directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// SplitName splits a full name on the first whitespace into a first-name /
// remainder pair.
func SplitName(full string) (first, rest string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// ResolveDoctor resolves a doctor by id or full name. Failures are recorded
// in errs under the field they belong to and a nil doctor is returned; the
// error return is reserved for directory failures.
func (r *Resolver) ResolveDoctor(id, name string, errs *RuleErrors) (*models.Doctor, error) {
	if id != "" {
		doctor, err := r.dir.DoctorByID(id)
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			errs.Add(FieldDoctor, "doctor not found")
		}
		return doctor, nil
	}
	if name == "" {
		errs.Add(FieldDoctor, "either doctor or doctor_name must be specified")
		return nil, nil
	}

	first, rest := SplitName(name)
	matches, err := r.dir.DoctorsByName(first, rest)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		errs.Add(FieldDoctorName, "no doctor found with this name")
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		errs.Add(FieldDoctorName, "multiple doctors match this name, use the doctor id instead")
		return nil, nil
	}
}

// ResolvePatient resolves a patient by id or full name, mirroring
// ResolveDoctor.
func (r *Resolver) ResolvePatient(id, name string, errs *RuleErrors) (*models.Patient, error) {
	if id != "" {
		patient, err := r.dir.PatientByID(id)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			errs.Add(FieldPatient, "patient not found")
		}
		return patient, nil
	}
	if name == "" {
		errs.Add(FieldPatient, "either patient or patient_name must be specified")
		return nil, nil
	}

	first, rest := SplitName(name)
	matches, err := r.dir.PatientsByName(first, rest)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		errs.Add(FieldPatientName, "no patient found with this name")
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		errs.Add(FieldPatientName, "multiple patients match this name, use the patient id instead")
		return nil, nil
	}
}
