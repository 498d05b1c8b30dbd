package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// PatientHandler handles patient registry requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// PatientRequest represents the request body for creating or updating a
// patient.
type PatientRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Address     string `json:"address"`
}

// validate checks the registry rules, returning the normalized gender and
// parsed birth date on success.
func (r *PatientRequest) validate(c *gin.Context) (gender string, dob *time.Time, ok bool) {
	if !utils.IsLetters(r.FirstName) {
		utils.FieldError(c, "firstName", "first name may contain letters only")
		return "", nil, false
	}
	if !utils.IsLetters(r.LastName) {
		utils.FieldError(c, "lastName", "last name may contain letters only")
		return "", nil, false
	}
	if !utils.IsValidPhone(r.Phone) {
		utils.FieldError(c, "phone", "phone must contain 7 to 15 digits")
		return "", nil, false
	}
	if r.Gender != "" {
		gender = strings.ToLower(strings.TrimSpace(r.Gender))
		switch gender {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
		default:
			utils.FieldError(c, "gender", "gender must be one of male, female, other")
			return "", nil, false
		}
	}
	if r.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", r.DateOfBirth)
		if err != nil {
			utils.FieldError(c, "dateOfBirth", "date of birth must be in YYYY-MM-DD format")
			return "", nil, false
		}
		if parsed.After(time.Now()) {
			utils.FieldError(c, "dateOfBirth", "date of birth cannot be in the future")
			return "", nil, false
		}
		dob = &parsed
	}
	if r.Address != "" && len(strings.TrimSpace(r.Address)) < 5 {
		utils.FieldError(c, "address", "address must be at least 5 characters")
		return "", nil, false
	}
	return gender, dob, true
}

// emailOrNil maps an absent email to NULL so the unique index only applies
// to patients that have one.
func emailOrNil(email string) *string {
	if email == "" {
		return nil
	}
	return &email
}

// checkDuplicateContact rejects a phone or email already held by another
// patient. excludeID is empty on create.
func (h *PatientHandler) checkDuplicateContact(c *gin.Context, phone, email, excludeID string) bool {
	query := h.DB.Where("phone = ?", phone)
	if excludeID != "" {
		query = query.Where("id != ?", excludeID)
	}
	var existing models.Patient
	if err := query.First(&existing).Error; err == nil {
		utils.FieldError(c, "phone", "a patient with this phone number already exists")
		return false
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return false
	}

	if email != "" {
		query = h.DB.Where("email = ?", email)
		if excludeID != "" {
			query = query.Where("id != ?", excludeID)
		}
		if err := query.First(&existing).Error; err == nil {
			utils.FieldError(c, "email", "a patient with this email already exists")
			return false
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return false
		}
	}
	return true
}

// CreatePatient handles registering a new patient.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	gender, dob, ok := req.validate(c)
	if !ok {
		return
	}
	if !h.checkDuplicateContact(c, req.Phone, req.Email, "") {
		return
	}

	patient := models.Patient{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Gender:      gender,
		Phone:       req.Phone,
		Email:       emailOrNil(req.Email),
		Address:     req.Address,
	}
	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", patient)
}

// ListPatients handles listing patients. Archived patients are hidden unless
// ?archived=true. Supported contains-filters: name, phone.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	query := h.DB.Model(&models.Patient{})
	if c.Query("archived") != "true" {
		query = query.Where("is_archived = ?", false)
	}
	if firstName := c.Query("first_name"); firstName != "" {
		query = query.Where("LOWER(first_name) LIKE ?", "%"+strings.ToLower(firstName)+"%")
	}
	if lastName := c.Query("last_name"); lastName != "" {
		query = query.Where("LOWER(last_name) LIKE ?", "%"+strings.ToLower(lastName)+"%")
	}
	if phone := c.Query("phone"); phone != "" {
		query = query.Where("phone LIKE ?", "%"+phone+"%")
	}
	if email := c.Query("email"); email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}
	if gender := c.Query("gender"); gender != "" {
		query = query.Where("gender = ?", strings.ToLower(gender))
	}
	if dob := c.Query("date_of_birth"); dob != "" {
		query = query.Where("date_of_birth = ?", dob)
	}

	var patients []models.Patient
	if err := query.Order("first_name, last_name").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatient handles fetching a single patient by ID. Archived patients are
// not visible here.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	id := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ? AND is_archived = ?", id, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatient handles updating a patient by ID.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	gender, dob, ok := req.validate(c)
	if !ok {
		return
	}

	if !h.checkDuplicateContact(c, req.Phone, req.Email, patient.ID) {
		return
	}

	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.DateOfBirth = dob
	patient.Gender = gender
	patient.Phone = req.Phone
	patient.Email = emailOrNil(req.Email)
	patient.Address = req.Address

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient archives a patient by ID. Patient rows are never hard
// deleted; appointments, exams and records keep their history.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Model(&patient).Update("is_archived", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to archive patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient archived successfully", nil)
}
