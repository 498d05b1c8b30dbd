package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// MedicationHandler handles the medication dictionary, prescriptions and
// medication packages.
type MedicationHandler struct {
	DB *gorm.DB
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(db *gorm.DB) *MedicationHandler {
	return &MedicationHandler{DB: db}
}

// MedicationRequest represents the request body for a medication dictionary
// entry.
type MedicationRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DefaultDoseUnit string `json:"defaultDoseUnit"`
	IsActive        *bool  `json:"isActive"`
}

// CreateMedication handles adding a medication to the dictionary.
func (h *MedicationHandler) CreateMedication(c *gin.Context) {
	var req MedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Medication
	if err := h.DB.Where("LOWER(name) = ?", strings.ToLower(req.Name)).First(&existing).Error; err == nil {
		utils.FieldError(c, "name", "a medication with this name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	medication := models.Medication{
		Name:            req.Name,
		Description:     req.Description,
		DefaultDoseUnit: req.DefaultDoseUnit,
		IsActive:        true,
	}
	if req.IsActive != nil {
		medication.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&medication).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medication: "+err.Error())
		return
	}

	utils.Created(c, "Medication created successfully", medication)
}

// ListMedications handles listing the medication dictionary. Inactive
// entries are hidden unless ?all=true.
func (h *MedicationHandler) ListMedications(c *gin.Context) {
	query := h.DB.Model(&models.Medication{})
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var medications []models.Medication
	if err := query.Order("name").Find(&medications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medications: "+err.Error())
		return
	}
	utils.Success(c, "Medications fetched successfully", medications)
}

// UpdateMedication handles editing a medication dictionary entry.
func (h *MedicationHandler) UpdateMedication(c *gin.Context) {
	id := c.Param("id")

	var medication models.Medication
	if err := h.DB.First(&medication, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Medication not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req MedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		medication.Name = req.Name
	}
	if req.Description != "" {
		medication.Description = req.Description
	}
	if req.DefaultDoseUnit != "" {
		medication.DefaultDoseUnit = req.DefaultDoseUnit
	}
	if req.IsActive != nil {
		medication.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&medication).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medication: "+err.Error())
		return
	}
	utils.Success(c, "Medication updated successfully", medication)
}

// PrescriptionItemRequest is one prescription line.
type PrescriptionItemRequest struct {
	Medication   string `json:"medication" binding:"required"`
	TimesPerDay  int    `json:"timesPerDay" binding:"required,gte=1"`
	DoseUnit     string `json:"doseUnit"`
	NumberOfDays int    `json:"numberOfDays" binding:"required,gte=1"`
	Notes        string `json:"notes"`
}

// PrescriptionRequest represents the request body for the prescription
// upsert: general notes plus at least one item, replacing the exam's
// current prescription in one call.
type PrescriptionRequest struct {
	Notes        string                    `json:"notes"`
	PrescribedBy string                    `json:"prescribedBy"`
	Items        []PrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

// buildPrescriptionLines validates the items against the medication
// dictionary and materializes prescription rows for the exam.
func (h *MedicationHandler) buildPrescriptionLines(c *gin.Context, examID string, prescribedBy *string, items []PrescriptionItemRequest) ([]models.PrescribedMedication, bool) {
	lines := make([]models.PrescribedMedication, 0, len(items))
	for _, item := range items {
		var medication models.Medication
		if err := h.DB.First(&medication, "id = ?", item.Medication).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.FieldError(c, "items", "medication "+item.Medication+" not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return nil, false
		}
		doseUnit := item.DoseUnit
		if doseUnit == "" {
			doseUnit = medication.DefaultDoseUnit
		}
		if doseUnit == "" {
			utils.FieldError(c, "items", "a dose unit is required for "+medication.Name)
			return nil, false
		}
		lines = append(lines, models.PrescribedMedication{
			ClinicalExamID: examID,
			MedicationID:   medication.ID,
			TimesPerDay:    item.TimesPerDay,
			DoseUnit:       doseUnit,
			NumberOfDays:   item.NumberOfDays,
			Notes:          item.Notes,
			PrescribedByID: prescribedBy,
		})
	}
	return lines, true
}

// resolvePrescriber looks up the optional prescribing doctor.
func (h *MedicationHandler) resolvePrescriber(c *gin.Context, id string) (*string, bool) {
	if id == "" {
		return nil, true
	}
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.FieldError(c, "prescribedBy", "doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &doctor.ID, true
}

// UpsertPrescription handles writing an exam's prescription in one call:
// the general notes are stored on the exam and the item list replaces any
// existing prescription lines.
func (h *MedicationHandler) UpsertPrescription(c *gin.Context) {
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

	var req PrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prescribedBy, ok := h.resolvePrescriber(c, req.PrescribedBy)
	if !ok {
		return
	}
	lines, ok := h.buildPrescriptionLines(c, exam.ID, prescribedBy, req.Items)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("clinical_exam_id = ?", exam.ID).Delete(&models.PrescribedMedication{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		return tx.Model(&exam).Update("prescription_notes", req.Notes).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to save prescription: "+err.Error())
		return
	}

	utils.Success(c, "Prescription saved successfully", lines)
}

// GetPrescription handles fetching an exam's prescription lines.
func (h *MedicationHandler) GetPrescription(c *gin.Context) {
	examID := c.Param("id")

	var lines []models.PrescribedMedication
	err := h.DB.
		Preload("Medication").
		Where("clinical_exam_id = ?", examID).
		Find(&lines).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch prescription: "+err.Error())
		return
	}
	utils.Success(c, "Prescription fetched successfully", lines)
}

// PackageItemRequest is one line of a medication package.
type PackageItemRequest struct {
	Medication   string `json:"medication" binding:"required"`
	TimesPerDay  int    `json:"timesPerDay" binding:"required,gte=1"`
	DoseUnit     string `json:"doseUnit" binding:"required"`
	NumberOfDays int    `json:"numberOfDays" binding:"required,gte=1"`
	Notes        string `json:"notes"`
}

// PackageRequest represents the request body for a medication package.
type PackageRequest struct {
	Name        string               `json:"name" binding:"required"`
	Disease     string               `json:"disease"`
	Description string               `json:"description"`
	Items       []PackageItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreatePackage handles creating a medication package with its items.
func (h *MedicationHandler) CreatePackage(c *gin.Context) {
	var req PackageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	pkg := models.MedicationPackage{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.Disease != "" {
		var disease models.Disease
		if err := h.DB.First(&disease, "id = ?", req.Disease).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.FieldError(c, "disease", "disease not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		pkg.DiseaseID = &disease.ID
	}
	for _, item := range req.Items {
		var medication models.Medication
		if err := h.DB.First(&medication, "id = ?", item.Medication).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.FieldError(c, "items", "medication "+item.Medication+" not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		pkg.Items = append(pkg.Items, models.MedicationPackageItem{
			MedicationID: medication.ID,
			TimesPerDay:  item.TimesPerDay,
			DoseUnit:     item.DoseUnit,
			NumberOfDays: item.NumberOfDays,
			Notes:        item.Notes,
		})
	}

	if err := h.DB.Create(&pkg).Error; err != nil {
		utils.InternalServerError(c, "Failed to create package: "+err.Error())
		return
	}
	utils.Created(c, "Medication package created successfully", pkg)
}

// ListPackages handles listing medication packages with their items.
// Inactive packages are hidden unless ?all=true.
func (h *MedicationHandler) ListPackages(c *gin.Context) {
	query := h.DB.Model(&models.MedicationPackage{}).Preload("Items")
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if diseaseID := c.Query("disease"); diseaseID != "" {
		query = query.Where("disease_id = ?", diseaseID)
	}

	var packages []models.MedicationPackage
	if err := query.Order("name").Find(&packages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch packages: "+err.Error())
		return
	}
	utils.Success(c, "Medication packages fetched successfully", packages)
}

// ApplyPackageRequest represents the request body for applying a package to
// an exam. Mode append adds the package lines on top of the existing
// prescription; replace clears it first.
type ApplyPackageRequest struct {
	Exam         string `json:"exam" binding:"required"`
	Mode         string `json:"mode" binding:"omitempty,oneof=append replace"`
	PrescribedBy string `json:"prescribedBy"`
}

// ApplyPackage handles copying a package's items into an exam as
// prescription lines and recording the application.
func (h *MedicationHandler) ApplyPackage(c *gin.Context) {
	packageID := c.Param("id")

	var pkg models.MedicationPackage
	if err := h.DB.Preload("Items").First(&pkg, "id = ? AND is_active = ?", packageID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Medication package not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req ApplyPackageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = models.PackageModeAppend
	}

	var exam models.ClinicalExam
	if err := h.DB.First(&exam, "id = ?", req.Exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.FieldError(c, "exam", "clinical exam not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	prescribedBy, ok := h.resolvePrescriber(c, req.PrescribedBy)
	if !ok {
		return
	}

	lines := make([]models.PrescribedMedication, 0, len(pkg.Items))
	for _, item := range pkg.Items {
		lines = append(lines, models.PrescribedMedication{
			ClinicalExamID: exam.ID,
			MedicationID:   item.MedicationID,
			TimesPerDay:    item.TimesPerDay,
			DoseUnit:       item.DoseUnit,
			NumberOfDays:   item.NumberOfDays,
			Notes:          item.Notes,
			PrescribedByID: prescribedBy,
		})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if mode == models.PackageModeReplace {
			if err := tx.Where("clinical_exam_id = ?", exam.ID).Delete(&models.PrescribedMedication{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		applied := models.AppliedMedicationPackage{
			ClinicalExamID: exam.ID,
			PackageID:      pkg.ID,
			PrescribedByID: prescribedBy,
			Mode:           mode,
		}
		return tx.Create(&applied).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to apply package: "+err.Error())
		return
	}

	utils.Success(c, "Medication package applied successfully", lines)
}
