package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/booking"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// ExamHandler handles clinical exams, procedure definitions, the toothcode
// dictionary and performed procedures.
type ExamHandler struct {
	DB *gorm.DB
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(db *gorm.DB) *ExamHandler {
	return &ExamHandler{DB: db}
}

// ClinicalExamRequest represents the request body for creating or updating
// a clinical exam. The patient is required and may be given by id or name;
// the doctor is optional.
type ClinicalExamRequest struct {
	PatientID         string `json:"patient"`
	PatientName       string `json:"patient_name"`
	DoctorID          string `json:"doctor"`
	DoctorName        string `json:"doctor_name"`
	AppointmentID     string `json:"appointment"`
	Complaint         string `json:"complaint"`
	MedicalAdvice     string `json:"medicalAdvice"`
	PrescriptionNotes string `json:"prescriptionNotes"`
}

// ClinicalExamView is the serialized form of a clinical exam.
type ClinicalExamView struct {
	ID                string             `json:"id"`
	Patient           string             `json:"patient"`
	PatientDisplay    string             `json:"patient_display"`
	Doctor            *string            `json:"doctor,omitempty"`
	DoctorDisplay     string             `json:"doctor_display,omitempty"`
	Appointment       *string            `json:"appointment,omitempty"`
	Complaint         string             `json:"complaint,omitempty"`
	MedicalAdvice     string             `json:"medicalAdvice,omitempty"`
	PrescriptionNotes string             `json:"prescriptionNotes,omitempty"`
	Procedures        []models.Procedure `json:"procedures,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

func newClinicalExamView(e *models.ClinicalExam) ClinicalExamView {
	view := ClinicalExamView{
		ID:                e.ID,
		Patient:           e.PatientID,
		PatientDisplay:    e.Patient.FullName(),
		Doctor:            e.DoctorID,
		Appointment:       e.AppointmentID,
		Complaint:         e.Complaint,
		MedicalAdvice:     e.MedicalAdvice,
		PrescriptionNotes: e.PrescriptionNotes,
		Procedures:        e.Procedures,
		CreatedAt:         e.CreatedAt,
	}
	if e.Doctor != nil {
		view.DoctorDisplay = e.Doctor.User.FullName()
	}
	return view
}

// resolveExamParties resolves the patient (required) and doctor (optional)
// of an exam request. A nil return with no response written means a
// resolution failure was reported already.
func (h *ExamHandler) resolveExamParties(c *gin.Context, req *ClinicalExamRequest) (*models.Patient, *models.Doctor, bool) {
	errs := booking.NewRuleErrors()
	resolver := booking.NewResolver(booking.NewGormStore(h.DB))

	patient, err := resolver.ResolvePatient(req.PatientID, req.PatientName, errs)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return nil, nil, false
	}

	var doctor *models.Doctor
	if req.DoctorID != "" || req.DoctorName != "" {
		doctor, err = resolver.ResolveDoctor(req.DoctorID, req.DoctorName, errs)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return nil, nil, false
		}
	}

	if errs.HasErrors() {
		utils.ValidationFailed(c, errs)
		return nil, nil, false
	}
	return patient, doctor, true
}

// CreateExam handles opening a new clinical exam.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req ClinicalExamRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, doctor, ok := h.resolveExamParties(c, &req)
	if !ok {
		return
	}

	exam := models.ClinicalExam{
		PatientID:         patient.ID,
		Complaint:         req.Complaint,
		MedicalAdvice:     req.MedicalAdvice,
		PrescriptionNotes: req.PrescriptionNotes,
	}
	if doctor != nil {
		exam.DoctorID = &doctor.ID
	}
	if req.AppointmentID != "" {
		var appointment models.Appointment
		if err := h.DB.First(&appointment, "id = ?", req.AppointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.FieldError(c, "appointment", "appointment not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		exam.AppointmentID = &appointment.ID
	}

	if err := h.DB.Create(&exam).Error; err != nil {
		utils.InternalServerError(c, "Failed to create clinical exam: "+err.Error())
		return
	}

	exam.Patient = *patient
	exam.Doctor = doctor
	utils.Created(c, "Clinical exam created successfully", newClinicalExamView(&exam))
}

// ListExams handles listing clinical exams, newest first. Filters: patient,
// doctor.
func (h *ExamHandler) ListExams(c *gin.Context) {
	query := h.DB.Model(&models.ClinicalExam{}).
		Preload("Patient").
		Preload("Doctor.User")
	if patientID := c.Query("patient"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if doctorID := c.Query("doctor"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}

	var exams []models.ClinicalExam
	if err := query.Order("created_at desc").Find(&exams).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch clinical exams: "+err.Error())
		return
	}

	views := make([]ClinicalExamView, len(exams))
	for i := range exams {
		views[i] = newClinicalExamView(&exams[i])
	}
	utils.Success(c, "Clinical exams fetched successfully", views)
}

// GetExam handles fetching a single clinical exam with its procedures.
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := c.Param("id")

	var exam models.ClinicalExam
	err := h.DB.
		Preload("Patient").
		Preload("Doctor.User").
		Preload("Procedures").
		First(&exam, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinical exam not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Clinical exam fetched successfully", newClinicalExamView(&exam))
}

// UpdateExam handles editing the narrative fields of a clinical exam.
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := c.Param("id")

	var exam models.ClinicalExam
	if err := h.DB.Preload("Patient").Preload("Doctor.User").First(&exam, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinical exam not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req ClinicalExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	exam.Complaint = req.Complaint
	exam.MedicalAdvice = req.MedicalAdvice
	exam.PrescriptionNotes = req.PrescriptionNotes
	if req.DoctorID != "" || req.DoctorName != "" {
		errs := booking.NewRuleErrors()
		resolver := booking.NewResolver(booking.NewGormStore(h.DB))
		doctor, err := resolver.ResolveDoctor(req.DoctorID, req.DoctorName, errs)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if errs.HasErrors() {
			utils.ValidationFailed(c, errs)
			return
		}
		exam.DoctorID = &doctor.ID
		exam.Doctor = doctor
	}

	if err := h.DB.Save(&exam).Error; err != nil {
		utils.InternalServerError(c, "Failed to update clinical exam: "+err.Error())
		return
	}

	utils.Success(c, "Clinical exam updated successfully", newClinicalExamView(&exam))
}

// CategoryRequest represents the request body for a procedure category.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCategory handles creating a procedure category. Names are unique
// case-insensitively.
func (h *ExamHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.ProcedureCategory
	if err := h.DB.Where("LOWER(name) = ?", strings.ToLower(req.Name)).First(&existing).Error; err == nil {
		utils.FieldError(c, "name", "a category with this name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	category := models.ProcedureCategory{Name: req.Name, Description: req.Description}
	if err := h.DB.Create(&category).Error; err != nil {
		utils.InternalServerError(c, "Failed to create category: "+err.Error())
		return
	}

	utils.Created(c, "Category created successfully", category)
}

// ListCategories handles listing procedure categories.
func (h *ExamHandler) ListCategories(c *gin.Context) {
	var categories []models.ProcedureCategory
	if err := h.DB.Order("name").Find(&categories).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch categories: "+err.Error())
		return
	}
	utils.Success(c, "Categories fetched successfully", categories)
}

// resolveCategory resolves a category reference given as an id or a
// case-insensitive name.
func (h *ExamHandler) resolveCategory(ref string) (*models.ProcedureCategory, error) {
	var category models.ProcedureCategory
	err := h.DB.First(&category, "id = ?", ref).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	err = h.DB.First(&category, "LOWER(name) = ?", strings.ToLower(ref)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// resolveDefinition resolves a procedure definition reference given as an
// id or a case-insensitive name.
func (h *ExamHandler) resolveDefinition(ref string) (*models.DentalProcedure, error) {
	var definition models.DentalProcedure
	err := h.DB.First(&definition, "id = ?", ref).Error
	if err == nil {
		return &definition, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	err = h.DB.First(&definition, "LOWER(name) = ?", strings.ToLower(ref)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &definition, nil
}

// DefinitionRequest represents the request body for a dental procedure
// definition. Category accepts an id or a name.
type DefinitionRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	DefaultPrice float64 `json:"defaultPrice" binding:"gte=0"`
	Category     string  `json:"category"`
	IsActive     *bool   `json:"isActive"`
}

// CreateDefinition handles creating a dental procedure definition.
func (h *ExamHandler) CreateDefinition(c *gin.Context) {
	var req DefinitionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.DentalProcedure
	if err := h.DB.Where("LOWER(name) = ?", strings.ToLower(req.Name)).First(&existing).Error; err == nil {
		utils.FieldError(c, "name", "a procedure with this name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	definition := models.DentalProcedure{
		Name:         req.Name,
		Description:  req.Description,
		DefaultPrice: req.DefaultPrice,
		IsActive:     true,
	}
	if req.IsActive != nil {
		definition.IsActive = *req.IsActive
	}
	if req.Category != "" {
		category, err := h.resolveCategory(req.Category)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if category == nil {
			utils.FieldError(c, "category", "category not found")
			return
		}
		definition.CategoryID = &category.ID
	}

	if err := h.DB.Create(&definition).Error; err != nil {
		utils.InternalServerError(c, "Failed to create procedure definition: "+err.Error())
		return
	}

	utils.Created(c, "Procedure definition created successfully", definition)
}

// ListDefinitions handles listing procedure definitions. Inactive
// definitions are hidden unless ?all=true; ?category filters by id or name.
func (h *ExamHandler) ListDefinitions(c *gin.Context) {
	query := h.DB.Model(&models.DentalProcedure{})
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if ref := c.Query("category"); ref != "" {
		category, err := h.resolveCategory(ref)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if category == nil {
			utils.FieldError(c, "category", "category not found")
			return
		}
		query = query.Where("category_id = ?", category.ID)
	}

	var definitions []models.DentalProcedure
	if err := query.Order("name").Find(&definitions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch procedure definitions: "+err.Error())
		return
	}
	utils.Success(c, "Procedure definitions fetched successfully", definitions)
}

// UpdateDefinition handles editing a procedure definition.
func (h *ExamHandler) UpdateDefinition(c *gin.Context) {
	id := c.Param("id")

	var definition models.DentalProcedure
	if err := h.DB.First(&definition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Procedure definition not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req DefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		definition.Name = req.Name
	}
	if req.Description != "" {
		definition.Description = req.Description
	}
	if req.DefaultPrice > 0 {
		definition.DefaultPrice = req.DefaultPrice
	}
	if req.IsActive != nil {
		definition.IsActive = *req.IsActive
	}
	if req.Category != "" {
		category, err := h.resolveCategory(req.Category)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if category == nil {
			utils.FieldError(c, "category", "category not found")
			return
		}
		definition.CategoryID = &category.ID
	}

	if err := h.DB.Save(&definition).Error; err != nil {
		utils.InternalServerError(c, "Failed to update procedure definition: "+err.Error())
		return
	}

	utils.Success(c, "Procedure definition updated successfully", definition)
}

// ListToothcodes handles listing the FDI toothcode dictionary. ?type filters
// permanent or deciduous teeth.
func (h *ExamHandler) ListToothcodes(c *gin.Context) {
	query := h.DB.Model(&models.Toothcode{})
	if toothType := c.Query("type"); toothType != "" {
		query = query.Where("tooth_type = ?", toothType)
	}

	var codes []models.Toothcode
	if err := query.Order("tooth_number").Find(&codes).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch toothcodes: "+err.Error())
		return
	}
	utils.Success(c, "Toothcodes fetched successfully", codes)
}

// ProcedureRequest represents the request body for recording a performed
// procedure on an exam. Definition accepts an id or a name; name,
// description, cost and category default from the definition when blank.
type ProcedureRequest struct {
	Definition  string  `json:"definition" binding:"required"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost" binding:"gte=0"`
	Status      string  `json:"status" binding:"omitempty,oneof=planned in_progress done"`
}

// CreateProcedure handles adding a performed procedure to a clinical exam.
func (h *ExamHandler) CreateProcedure(c *gin.Context) {
	examID := c.Param("id")

	var exam models.ClinicalExam
	if err := h.DB.First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinical exam not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req ProcedureRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	definition, err := h.resolveDefinition(req.Definition)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if definition == nil {
		utils.FieldError(c, "definition", "procedure definition not found")
		return
	}

	procedure := models.Procedure{
		ClinicalExamID: exam.ID,
		DefinitionID:   definition.ID,
		CategoryID:     definition.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		Cost:           req.Cost,
		Status:         models.ProcedureStatusPlanned,
	}
	if procedure.Name == "" {
		procedure.Name = definition.Name
	}
	if procedure.Description == "" {
		procedure.Description = definition.Description
	}
	if procedure.Cost == 0 {
		procedure.Cost = definition.DefaultPrice
	}
	if req.Status != "" {
		procedure.Status = req.Status
	}

	if err := h.DB.Create(&procedure).Error; err != nil {
		utils.InternalServerError(c, "Failed to create procedure: "+err.Error())
		return
	}

	utils.Created(c, "Procedure created successfully", procedure)
}

// UpdateProcedure handles editing a performed procedure.
func (h *ExamHandler) UpdateProcedure(c *gin.Context) {
	id := c.Param("id")

	var procedure models.Procedure
	if err := h.DB.First(&procedure, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Procedure not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Cost        *float64 `json:"cost" binding:"omitempty,gte=0"`
		Status      string   `json:"status" binding:"omitempty,oneof=planned in_progress done"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		procedure.Name = req.Name
	}
	if req.Description != "" {
		procedure.Description = req.Description
	}
	if req.Cost != nil {
		procedure.Cost = *req.Cost
	}
	if req.Status != "" {
		procedure.Status = req.Status
	}

	if err := h.DB.Save(&procedure).Error; err != nil {
		utils.InternalServerError(c, "Failed to update procedure: "+err.Error())
		return
	}

	utils.Success(c, "Procedure updated successfully", procedure)
}

// AttachTeethRequest represents the request body for bulk-linking teeth to
// a procedure. Each entry is a toothcode id or an FDI tooth number.
type AttachTeethRequest struct {
	Teeth       []string `json:"teeth" binding:"required,min=1"`
	PerformedBy string   `json:"performedBy"`
	Notes       string   `json:"notes"`
}

// AttachTeeth handles bulk-attaching teeth to a performed procedure.
func (h *ExamHandler) AttachTeeth(c *gin.Context) {
	procedureID := c.Param("id")

	var procedure models.Procedure
	if err := h.DB.First(&procedure, "id = ?", procedureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Procedure not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req AttachTeethRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var performedBy *string
	if req.PerformedBy != "" {
		var doctor models.Doctor
		if err := h.DB.First(&doctor, "id = ?", req.PerformedBy).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.FieldError(c, "performedBy", "doctor not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		performedBy = &doctor.ID
	}

	links := make([]models.ProcedureToothcode, 0, len(req.Teeth))
	for _, ref := range req.Teeth {
		var code models.Toothcode
		err := h.DB.Where("id = ? OR tooth_number = ?", ref, ref).First(&code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.FieldError(c, "teeth", "unknown tooth "+ref)
			return
		}
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		links = append(links, models.ProcedureToothcode{
			ProcedureID:   procedure.ID,
			ToothcodeID:   code.ID,
			PerformedByID: performedBy,
			Notes:         req.Notes,
		})
	}

	if err := h.DB.Create(&links).Error; err != nil {
		utils.InternalServerError(c, "Failed to attach teeth: "+err.Error())
		return
	}

	utils.Created(c, "Teeth attached successfully", links)
}

// ListProcedureTeeth handles listing the tooth links of a procedure.
func (h *ExamHandler) ListProcedureTeeth(c *gin.Context) {
	procedureID := c.Param("id")

	var links []models.ProcedureToothcode
	err := h.DB.
		Preload("Toothcode").
		Where("procedure_id = ?", procedureID).
		Find(&links).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch tooth links: "+err.Error())
		return
	}
	utils.Success(c, "Tooth links fetched successfully", links)
}
