package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/booking"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// RecordHandler handles medical records, attachments, and the patient
// disease and allergy lists.
type RecordHandler struct {
	DB *gorm.DB
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(db *gorm.DB) *RecordHandler {
	return &RecordHandler{DB: db}
}

// getOrCreateRecord returns the patient's medical record, creating it on
// first use. There is exactly one record per patient.
func (h *RecordHandler) getOrCreateRecord(patientID string) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	err := h.DB.Where("patient_id = ?", patientID).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	record = models.MedicalRecord{PatientID: patientID}
	if err := h.DB.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecords handles listing medical records with their patients.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	var records []models.MedicalRecord
	if err := h.DB.Preload("Patient").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}
	utils.Success(c, "Medical records fetched successfully", records)
}

// appointmentDetail is one appointment inside a record detail, with the
// exam and prescriptions nested.
type appointmentDetail struct {
	ID            string                        `json:"id"`
	Date          string                        `json:"date"`
	Time          string                        `json:"time"`
	Status        string                        `json:"status"`
	StatusDisplay string                        `json:"status_display"`
	Reason        string                        `json:"reason,omitempty"`
	DoctorDisplay string                        `json:"doctor_display"`
	ClinicalExam  *ClinicalExamView             `json:"clinicalExam,omitempty"`
	Medications   []models.PrescribedMedication `json:"medications,omitempty"`
}

// recordDetail aggregates everything known about one patient.
type recordDetail struct {
	ID           string                  `json:"id"`
	Patient      models.Patient          `json:"patient"`
	Attachments  []models.Attachment     `json:"attachments"`
	Diseases     []models.PatientDisease `json:"diseases"`
	Allergies    []models.PatientAllergy `json:"allergies"`
	Appointments []appointmentDetail     `json:"appointments"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// GetRecordByPatient handles the aggregated record view for one patient:
// attachments, chronic diseases, allergies, and the appointment history with
// nested exams and prescriptions.
func (h *RecordHandler) GetRecordByPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	record, err := h.getOrCreateRecord(patient.ID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	detail := recordDetail{
		ID:        record.ID,
		Patient:   patient,
		CreatedAt: record.CreatedAt,
	}

	if err := h.DB.Where("medical_record_id = ?", record.ID).Find(&detail.Attachments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch attachments: "+err.Error())
		return
	}
	if err := h.DB.Preload("Disease").Where("patient_id = ?", patient.ID).Find(&detail.Diseases).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch diseases: "+err.Error())
		return
	}
	if err := h.DB.Preload("Medication").Where("patient_id = ?", patient.ID).Find(&detail.Allergies).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch allergies: "+err.Error())
		return
	}

	var appointments []models.Appointment
	err = h.DB.
		Preload("Doctor.User").
		Where("patient_id = ?", patient.ID).
		Order("date desc, time desc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	detail.Appointments = make([]appointmentDetail, len(appointments))
	for i := range appointments {
		a := &appointments[i]
		item := appointmentDetail{
			ID:            a.ID,
			Date:          a.Date,
			Time:          booking.DisplayCanonical(a.Time),
			Status:        string(a.Status),
			StatusDisplay: a.Status.ArabicLabel(),
			Reason:        a.Reason,
			DoctorDisplay: a.Doctor.User.FullName(),
		}

		var exam models.ClinicalExam
		err := h.DB.
			Preload("Patient").
			Preload("Doctor.User").
			Preload("Procedures").
			Where("appointment_id = ?", a.ID).
			First(&exam).Error
		if err == nil {
			view := newClinicalExamView(&exam)
			item.ClinicalExam = &view
			if err := h.DB.Preload("Medication").
				Where("clinical_exam_id = ?", exam.ID).
				Find(&item.Medications).Error; err != nil {
				utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
				return
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		detail.Appointments[i] = item
	}

	utils.Success(c, "Medical record fetched successfully", detail)
}

// UploadAttachment handles attaching an uploaded file to a patient's
// medical record via multipart form: file, type, description.
func (h *RecordHandler) UploadAttachment(c *gin.Context) {
	patientID := c.Param("patientId")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	record, err := h.getOrCreateRecord(patient.ID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.FieldError(c, "file", "an uploaded file is required")
		return
	}

	attachmentType := models.AttachmentType(c.PostForm("type"))
	switch attachmentType {
	case models.AttachmentXRay, models.AttachmentReport, models.AttachmentImage, models.AttachmentOther:
	case "":
		attachmentType = models.AttachmentOther
	default:
		utils.FieldError(c, "type", "type must be one of xray, report, image, other")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerError(c, "Failed to read uploaded file: "+err.Error())
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalServerError(c, "Failed to read uploaded file: "+err.Error())
		return
	}

	attachment := models.Attachment{
		MedicalRecordID: record.ID,
		FileName:        fileHeader.Filename,
		FileType:        fileHeader.Header.Get("Content-Type"),
		Type:            attachmentType,
		Description:     c.PostForm("description"),
		FileData:        data,
	}
	if err := h.DB.Create(&attachment).Error; err != nil {
		utils.InternalServerError(c, "Failed to store attachment: "+err.Error())
		return
	}

	utils.Created(c, "Attachment uploaded successfully", attachment)
}

// GetAttachment handles downloading an attachment's file content.
func (h *RecordHandler) GetAttachment(c *gin.Context) {
	id := c.Param("id")

	var attachment models.Attachment
	if err := h.DB.First(&attachment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Attachment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	contentType := attachment.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Data(200, contentType, attachment.FileData)
}

// DiseaseRequest represents the request body for a disease dictionary entry.
type DiseaseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateDisease handles adding a disease to the dictionary.
func (h *RecordHandler) CreateDisease(c *gin.Context) {
	var req DiseaseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	disease := models.Disease{Name: req.Name, Description: req.Description}
	if err := h.DB.Create(&disease).Error; err != nil {
		utils.InternalServerError(c, "Failed to create disease: "+err.Error())
		return
	}
	utils.Created(c, "Disease created successfully", disease)
}

// ListDiseases handles listing the disease dictionary.
func (h *RecordHandler) ListDiseases(c *gin.Context) {
	var diseases []models.Disease
	if err := h.DB.Order("name").Find(&diseases).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch diseases: "+err.Error())
		return
	}
	utils.Success(c, "Diseases fetched successfully", diseases)
}

// PatientDiseaseRequest represents the request body for marking a chronic
// disease on a patient.
type PatientDiseaseRequest struct {
	Disease     string `json:"disease" binding:"required"`
	Notes       string `json:"notes"`
	DiagnosedAt string `json:"diagnosedAt"`
}

// AddPatientDisease handles linking a chronic disease to a patient.
func (h *RecordHandler) AddPatientDisease(c *gin.Context) {
	patientID := c.Param("patientId")

	var req PatientDiseaseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var disease models.Disease
	if err := h.DB.First(&disease, "id = ?", req.Disease).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.FieldError(c, "disease", "disease not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	link := models.PatientDisease{
		PatientID: patientID,
		DiseaseID: disease.ID,
		Notes:     req.Notes,
	}
	if req.DiagnosedAt != "" {
		diagnosedAt, err := time.Parse("2006-01-02", req.DiagnosedAt)
		if err != nil {
			utils.FieldError(c, "diagnosedAt", "diagnosis date must be in YYYY-MM-DD format")
			return
		}
		link.DiagnosedAt = &diagnosedAt
	}

	if err := h.DB.Create(&link).Error; err != nil {
		utils.InternalServerError(c, "Failed to add disease: "+err.Error())
		return
	}
	utils.Created(c, "Disease added to patient successfully", link)
}

// AddPatientAllergyRequest represents the request body for recording a
// medication allergy.
type AddPatientAllergyRequest struct {
	Medication string `json:"medication" binding:"required"`
}

// AddPatientAllergy handles recording a medication allergy on a patient.
func (h *RecordHandler) AddPatientAllergy(c *gin.Context) {
	patientID := c.Param("patientId")

	var req AddPatientAllergyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var medication models.Medication
	if err := h.DB.First(&medication, "id = ?", req.Medication).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.FieldError(c, "medication", "medication not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	link := models.PatientAllergy{PatientID: patientID, MedicationID: medication.ID}
	if err := h.DB.Create(&link).Error; err != nil {
		utils.InternalServerError(c, "Failed to add allergy: "+err.Error())
		return
	}
	utils.Created(c, "Allergy added to patient successfully", link)
}
