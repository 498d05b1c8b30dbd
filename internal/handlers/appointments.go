package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/booking"
	"dental-clinic-server/internal/clock"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// errBookingRejected aborts the booking transaction when the validator
// collects rule violations, so nothing is written.
var errBookingRejected = errors.New("booking rejected")

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB  *gorm.DB
	Clk clock.Clock
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, clk clock.Clock) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Clk: clk}
}

// AppointmentRequest represents the request body for creating or updating an
// appointment. The patient and doctor may each be given by id or by full
// name; exactly one of the pair is required on create.
type AppointmentRequest struct {
	PatientID   string `json:"patient"`
	PatientName string `json:"patient_name"`
	DoctorID    string `json:"doctor"`
	DoctorName  string `json:"doctor_name"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Status      string `json:"status"`
	Reason      string `json:"reason"`
}

// AppointmentView is the serialized form of an appointment. Time is rendered
// in 12-hour display form; the canonical 24-hour value never leaves storage.
type AppointmentView struct {
	ID             string    `json:"id"`
	Patient        string    `json:"patient"`
	PatientDisplay string    `json:"patient_display"`
	Doctor         string    `json:"doctor"`
	DoctorDisplay  string    `json:"doctor_display"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Status         string    `json:"status"`
	StatusDisplay  string    `json:"status_display"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newAppointmentView(a *models.Appointment) AppointmentView {
	return AppointmentView{
		ID:             a.ID,
		Patient:        a.PatientID,
		PatientDisplay: a.Patient.FullName(),
		Doctor:         a.DoctorID,
		DoctorDisplay:  a.Doctor.User.FullName(),
		Date:           a.Date,
		Time:           booking.DisplayCanonical(a.Time),
		Status:         string(a.Status),
		StatusDisplay:  a.Status.ArabicLabel(),
		Reason:         a.Reason,
		CreatedAt:      a.CreatedAt,
	}
}

// parseDateField canonicalizes a date string, recording a field error when
// it does not parse.
func parseDateField(input string, errs *booking.RuleErrors) string {
	d, err := time.Parse(booking.DateLayout, input)
	if err != nil {
		errs.Add(booking.FieldDate, "date must be in YYYY-MM-DD format")
		return ""
	}
	return d.Format(booking.DateLayout)
}

// parseTimeField canonicalizes a time-of-day string, recording a field error
// when it does not parse.
func parseTimeField(input string, errs *booking.RuleErrors) string {
	t, err := booking.ParseTime(input)
	if err != nil {
		errs.Add(booking.FieldTime, err.Error())
		return ""
	}
	return booking.CanonicalTime(t)
}

// CreateAppointment handles booking a new appointment. Input problems and
// rule violations are collected per field and returned together; the
// conflict scans and the insert run in one transaction with row locks so
// two racing bookings for the same slot cannot both pass.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req AppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	errs := booking.NewRuleErrors()
	date := parseDateField(req.Date, errs)
	timeOfDay := parseTimeField(req.Time, errs)

	status := models.StatusPending
	if req.Status != "" {
		parsed, err := models.ParseStatus(req.Status)
		if err != nil {
			errs.Add("status", "status must be one of pending, confirmed, completed, cancelled")
		} else {
			status = parsed
		}
	}

	store := booking.NewGormStore(h.DB)
	resolver := booking.NewResolver(store)
	doctor, err := resolver.ResolveDoctor(req.DoctorID, req.DoctorName, errs)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	patient, err := resolver.ResolvePatient(req.PatientID, req.PatientName, errs)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	if errs.HasErrors() {
		utils.ValidationFailed(c, errs)
		return
	}

	appointment := models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      date,
		Time:      timeOfDay,
		Status:    status,
		Reason:    req.Reason,
	}

	var ruleErrs *booking.RuleErrors
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		validator := booking.NewValidator(store.Locked(tx), h.Clk)
		verrs, err := validator.Validate(booking.Candidate{
			DoctorID:  doctor.ID,
			PatientID: patient.ID,
			Date:      date,
			Time:      timeOfDay,
			Status:    status,
		})
		if err != nil {
			return err
		}
		if verrs != nil {
			ruleErrs = verrs
			return errBookingRejected
		}
		return tx.Create(&appointment).Error
	})
	if errors.Is(txErr, errBookingRejected) {
		utils.ValidationFailed(c, ruleErrs)
		return
	}
	if txErr != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+txErr.Error())
		return
	}

	appointment.Patient = *patient
	appointment.Doctor = *doctor
	utils.Created(c, "Appointment created successfully", newAppointmentView(&appointment))
}

// ListAppointments handles listing appointments, newest slot first.
// Supported query filters: patient, doctor, status, date.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	query := h.DB.Model(&models.Appointment{}).
		Preload("Patient").
		Preload("Doctor.User")

	if patientID := c.Query("patient"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if doctorID := c.Query("doctor"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		status, err := models.ParseStatus(rawStatus)
		if err != nil {
			utils.FieldError(c, "status", "unknown appointment status")
			return
		}
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var appointments []models.Appointment
	if err := query.Order("date desc, time desc").Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	views := make([]AppointmentView, len(appointments))
	for i := range appointments {
		views[i] = newAppointmentView(&appointments[i])
	}
	utils.Success(c, "Appointments fetched successfully", views)
}

// TodayAppointments handles listing today's appointments in slot order.
func (h *AppointmentHandler) TodayAppointments(c *gin.Context) {
	var appointments []models.Appointment
	err := h.DB.Model(&models.Appointment{}).
		Preload("Patient").
		Preload("Doctor.User").
		Where("date = ?", clock.Today(h.Clk)).
		Order("time asc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	views := make([]AppointmentView, len(appointments))
	for i := range appointments {
		views[i] = newAppointmentView(&appointments[i])
	}
	utils.Success(c, "Today's appointments fetched successfully", views)
}

// GetAppointment handles fetching a single appointment by ID.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	id := c.Param("id")

	var appointment models.Appointment
	err := h.DB.Preload("Patient").Preload("Doctor.User").First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Appointment fetched successfully", newAppointmentView(&appointment))
}

// UpdateAppointment handles rescheduling or editing an appointment. The full
// rule set runs again with this appointment's own row excluded from the
// conflict scans.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	id := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req AppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	// Unchanged identities fall back to the stored row.
	if req.PatientID == "" && req.PatientName == "" {
		req.PatientID = appointment.PatientID
	}
	if req.DoctorID == "" && req.DoctorName == "" {
		req.DoctorID = appointment.DoctorID
	}

	errs := booking.NewRuleErrors()
	date := parseDateField(req.Date, errs)
	timeOfDay := parseTimeField(req.Time, errs)

	status := appointment.Status
	if req.Status != "" {
		parsed, err := models.ParseStatus(req.Status)
		if err != nil {
			errs.Add("status", "status must be one of pending, confirmed, completed, cancelled")
		} else {
			status = parsed
		}
	}

	store := booking.NewGormStore(h.DB)
	resolver := booking.NewResolver(store)
	doctor, err := resolver.ResolveDoctor(req.DoctorID, req.DoctorName, errs)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	patient, err := resolver.ResolvePatient(req.PatientID, req.PatientName, errs)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	if errs.HasErrors() {
		utils.ValidationFailed(c, errs)
		return
	}

	appointment.PatientID = patient.ID
	appointment.DoctorID = doctor.ID
	appointment.Date = date
	appointment.Time = timeOfDay
	appointment.Status = status
	appointment.Reason = req.Reason

	var ruleErrs *booking.RuleErrors
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		validator := booking.NewValidator(store.Locked(tx), h.Clk)
		verrs, err := validator.Validate(booking.Candidate{
			ExcludeID: appointment.ID,
			DoctorID:  doctor.ID,
			PatientID: patient.ID,
			Date:      date,
			Time:      timeOfDay,
			Status:    status,
		})
		if err != nil {
			return err
		}
		if verrs != nil {
			ruleErrs = verrs
			return errBookingRejected
		}
		return tx.Save(&appointment).Error
	})
	if errors.Is(txErr, errBookingRejected) {
		utils.ValidationFailed(c, ruleErrs)
		return
	}
	if txErr != nil {
		utils.InternalServerError(c, "Failed to update appointment: "+txErr.Error())
		return
	}

	appointment.Patient = *patient
	appointment.Doctor = *doctor
	utils.Success(c, "Appointment updated successfully", newAppointmentView(&appointment))
}

// UpdateAppointmentStatusRequest represents the request body for a
// status-only update.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAppointmentStatus handles a status-only transition. This is how
// appointments are cancelled, confirmed, and completed; the booking rules do
// not run here.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	id := c.Param("id")

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		utils.FieldError(c, "status", "status must be one of pending, confirmed, completed, cancelled")
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor.User").First(&appointment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	appointment.Status = status
	if err := h.DB.Model(&appointment).Update("status", status).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	utils.Success(c, "Appointment status updated successfully", newAppointmentView(&appointment))
}
