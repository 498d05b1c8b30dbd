package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/models"
)

type memoryDirectory struct {
	doctors  []models.Doctor
	patients []models.Patient
}

func (d *memoryDirectory) DoctorByID(id string) (*models.Doctor, error) {
	for i := range d.doctors {
		if d.doctors[i].ID == id {
			return &d.doctors[i], nil
		}
	}
	return nil, nil
}

func (d *memoryDirectory) DoctorsByName(firstName, lastName string) ([]models.Doctor, error) {
	var matches []models.Doctor
	for _, doc := range d.doctors {
		if strings.EqualFold(doc.User.FirstName, firstName) && strings.EqualFold(doc.User.LastName, lastName) {
			matches = append(matches, doc)
		}
	}
	return matches, nil
}

func (d *memoryDirectory) PatientByID(id string) (*models.Patient, error) {
	for i := range d.patients {
		if d.patients[i].ID == id && !d.patients[i].IsArchived {
			return &d.patients[i], nil
		}
	}
	return nil, nil
}

func (d *memoryDirectory) PatientsByName(firstName, lastName string) ([]models.Patient, error) {
	var matches []models.Patient
	for _, p := range d.patients {
		if !p.IsArchived && strings.EqualFold(p.FirstName, firstName) && strings.EqualFold(p.LastName, lastName) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func newDoctor(id, firstName, lastName string) models.Doctor {
	doc := models.Doctor{User: models.User{FirstName: firstName, LastName: lastName}}
	doc.ID = id
	return doc
}

func newPatient(id, firstName, lastName string) models.Patient {
	p := models.Patient{FirstName: firstName, LastName: lastName}
	p.ID = id
	return p
}

func TestSplitName(t *testing.T) {
	cases := []struct{ full, first, rest string }{
		{"Ahmad Saleh", "Ahmad", "Saleh"},
		{"Ahmad Abu Saleh", "Ahmad", "Abu Saleh"},
		{"  Ahmad   Saleh ", "Ahmad", "Saleh"},
		{"Ahmad", "Ahmad", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, rest := SplitName(tc.full)
		assert.Equal(t, tc.first, first)
		assert.Equal(t, tc.rest, rest)
	}
}

func TestResolveDoctorByID(t *testing.T) {
	dir := &memoryDirectory{doctors: []models.Doctor{newDoctor("doc-1", "Ahmad", "Saleh")}}
	r := NewResolver(dir)
	errs := NewRuleErrors()

	doctor, err := r.ResolveDoctor("doc-1", "", errs)
	require.NoError(t, err)
	require.NotNil(t, doctor)
	assert.Equal(t, "doc-1", doctor.ID)
	assert.False(t, errs.HasErrors())
}

func TestResolveDoctorByName(t *testing.T) {
	dir := &memoryDirectory{doctors: []models.Doctor{newDoctor("doc-1", "Ahmad", "Saleh")}}
	r := NewResolver(dir)
	errs := NewRuleErrors()

	doctor, err := r.ResolveDoctor("", "ahmad saleh", errs)
	require.NoError(t, err)
	require.NotNil(t, doctor)
	assert.Equal(t, "doc-1", doctor.ID)
}

func TestResolveDoctorUnknownID(t *testing.T) {
	r := NewResolver(&memoryDirectory{})
	errs := NewRuleErrors()

	doctor, err := r.ResolveDoctor("doc-404", "", errs)
	require.NoError(t, err)
	assert.Nil(t, doctor)
	assert.True(t, errs.Has(FieldDoctor))
}

func TestResolveDoctorUnknownName(t *testing.T) {
	r := NewResolver(&memoryDirectory{})
	errs := NewRuleErrors()

	doctor, err := r.ResolveDoctor("", "Nobody Here", errs)
	require.NoError(t, err)
	assert.Nil(t, doctor)
	assert.True(t, errs.Has(FieldDoctorName))
}

func TestResolveDoctorAmbiguousName(t *testing.T) {
	dir := &memoryDirectory{doctors: []models.Doctor{
		newDoctor("doc-1", "Ahmad", "Saleh"),
		newDoctor("doc-2", "Ahmad", "Saleh"),
	}}
	r := NewResolver(dir)
	errs := NewRuleErrors()

	doctor, err := r.ResolveDoctor("", "Ahmad Saleh", errs)
	require.NoError(t, err)
	assert.Nil(t, doctor)
	require.True(t, errs.Has(FieldDoctorName))
	assert.Contains(t, errs.Fields[FieldDoctorName][0], "multiple")
}

func TestResolveDoctorMissingIdentity(t *testing.T) {
	r := NewResolver(&memoryDirectory{})
	errs := NewRuleErrors()

	doctor, err := r.ResolveDoctor("", "", errs)
	require.NoError(t, err)
	assert.Nil(t, doctor)
	require.True(t, errs.Has(FieldDoctor))
	assert.Contains(t, errs.Fields[FieldDoctor][0], "must be specified")
}

func TestResolvePatientByNameMultiPart(t *testing.T) {
	dir := &memoryDirectory{patients: []models.Patient{newPatient("pat-1", "Lina", "Abu Zayd")}}
	r := NewResolver(dir)
	errs := NewRuleErrors()

	// Split happens on the first space only, so multi-part last names
	// survive.
	patient, err := r.ResolvePatient("", "Lina Abu Zayd", errs)
	require.NoError(t, err)
	require.NotNil(t, patient)
	assert.Equal(t, "pat-1", patient.ID)
}

func TestResolvePatientArchivedIsInvisible(t *testing.T) {
	archived := newPatient("pat-1", "Lina", "Zayd")
	archived.IsArchived = true
	dir := &memoryDirectory{patients: []models.Patient{archived}}
	r := NewResolver(dir)
	errs := NewRuleErrors()

	patient, err := r.ResolvePatient("pat-1", "", errs)
	require.NoError(t, err)
	assert.Nil(t, patient)
	assert.True(t, errs.Has(FieldPatient))
}
