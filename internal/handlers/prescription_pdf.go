package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/signintech/gopdf"
	"gorm.io/gorm"

	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// PrescriptionPDFHandler renders an exam's prescription as a printable PDF.
type PrescriptionPDFHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewPrescriptionPDFHandler creates a new PrescriptionPDFHandler.
func NewPrescriptionPDFHandler(db *gorm.DB, cfg *config.Config) *PrescriptionPDFHandler {
	return &PrescriptionPDFHandler{DB: db, Cfg: cfg}
}

// Common DejaVu locations; the configured path is tried first.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

func (h *PrescriptionPDFHandler) loadFont(pdf *gopdf.GoPdf) error {
	paths := defaultFontPaths
	if h.Cfg.PrescriptionFontPath != "" {
		paths = append([]string{h.Cfg.PrescriptionFontPath}, paths...)
	}

	var lastErr error
	for _, path := range paths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("failed to load prescription font: %w", lastErr)
}

// RenderPrescription handles GET of an exam's prescription as a PDF
// download.
func (h *PrescriptionPDFHandler) RenderPrescription(c *gin.Context) {
	examID := c.Param("id")

	var exam models.ClinicalExam
	err := h.DB.
		Preload("Patient").
		Preload("Doctor.User").
		First(&exam, "id = ?", examID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinical exam not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var lines []models.PrescribedMedication
	err = h.DB.
		Preload("Medication").
		Where("clinical_exam_id = ?", exam.ID).
		Find(&lines).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch prescription: "+err.Error())
		return
	}
	if len(lines) == 0 {
		utils.NotFound(c, "This exam has no prescription")
		return
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()
	if err := h.loadFont(&pdf); err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		utils.InternalServerError(c, "Failed to render PDF: "+err.Error())
		return
	}
	pdf.Cell(nil, "Prescription")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		utils.InternalServerError(c, "Failed to render PDF: "+err.Error())
		return
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", exam.CreatedAt.Format("2006-01-02")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Patient: %s", exam.Patient.FullName()))
	pdf.Br(15)
	if exam.Doctor != nil {
		pdf.Cell(nil, fmt.Sprintf("Doctor: %s", exam.Doctor.User.FullName()))
		pdf.Br(15)
	}
	pdf.Br(10)

	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		utils.InternalServerError(c, "Failed to render PDF: "+err.Error())
		return
	}
	pdf.Cell(nil, "Medications:")
	pdf.Br(18)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		utils.InternalServerError(c, "Failed to render PDF: "+err.Error())
		return
	}
	for i, line := range lines {
		text := fmt.Sprintf("%d. %s: %d x %s daily for %d days",
			i+1, line.Medication.Name, line.TimesPerDay, line.DoseUnit, line.NumberOfDays)
		if line.Notes != "" {
			text += " (" + line.Notes + ")"
		}
		wrapped, _ := pdf.SplitText(text, 500)
		for _, l := range wrapped {
			pdf.Cell(nil, l)
			pdf.Br(14)
		}
		pdf.Br(4)
	}

	if exam.PrescriptionNotes != "" {
		pdf.Br(10)
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			utils.InternalServerError(c, "Failed to render PDF: "+err.Error())
			return
		}
		pdf.Cell(nil, "Notes:")
		pdf.Br(18)
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			utils.InternalServerError(c, "Failed to render PDF: "+err.Error())
			return
		}
		wrapped, _ := pdf.SplitText(exam.PrescriptionNotes, 500)
		for _, l := range wrapped {
			pdf.Cell(nil, l)
			pdf.Br(14)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		utils.InternalServerError(c, "Failed to write PDF: "+err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="prescription_%s.pdf"`, exam.ID))
	c.Data(200, "application/pdf", buf.Bytes())
}
