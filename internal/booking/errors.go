package booking

import (
	"sort"
	"strings"
)

// Field keys used in validation error payloads. They match the request
// fields so a client can attach each message to the input it belongs to.
const (
	FieldDate        = "date"
	FieldTime        = "time"
	FieldDoctor      = "doctor"
	FieldPatient     = "patient"
	FieldDoctorName  = "doctor_name"
	FieldPatientName = "patient_name"
)

// RuleErrors collects validation failures keyed by field. All rules are
// evaluated before it is returned, so a caller fixing one field sees every
// remaining problem in a single round trip.
type RuleErrors struct {
	Fields map[string][]string `json:"errors"`
}

// NewRuleErrors returns an empty error collection.
func NewRuleErrors() *RuleErrors {
	return &RuleErrors{Fields: make(map[string][]string)}
}

// Add appends a message under a field key.
func (e *RuleErrors) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any rule was violated.
func (e *RuleErrors) HasErrors() bool {
	return len(e.Fields) > 0
}

// Has reports whether a specific field has at least one message.
func (e *RuleErrors) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Error renders the collection as "field: message; field: message" with
// fields in a stable order.
func (e *RuleErrors) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		for _, msg := range e.Fields[field] {
			parts = append(parts, field+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}
