package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// BillingHandler handles invoices and payments.
type BillingHandler struct {
	DB *gorm.DB
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(db *gorm.DB) *BillingHandler {
	return &BillingHandler{DB: db}
}

// CreateInvoiceRequest represents the request body for invoicing an exam.
type CreateInvoiceRequest struct {
	Exam string `json:"exam" binding:"required"`
}

// CreateInvoice handles creating an invoice from a clinical exam. The line
// items mirror the exam's procedures and the total is computed here; one
// invoice per exam.
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var exam models.ClinicalExam
	if err := h.DB.Preload("Procedures").First(&exam, "id = ?", req.Exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.FieldError(c, "exam", "clinical exam not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	if len(exam.Procedures) == 0 {
		utils.FieldError(c, "exam", "this exam has no procedures to bill")
		return
	}

	var existing models.Invoice
	if err := h.DB.Where("clinical_exam_id = ?", exam.ID).First(&existing).Error; err == nil {
		utils.FieldError(c, "exam", "this exam already has an invoice")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	invoice := models.Invoice{
		ClinicalExamID: exam.ID,
		PatientID:      exam.PatientID,
		Status:         models.InvoiceUnpaid,
	}
	for _, procedure := range exam.Procedures {
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			ProcedureID: procedure.ID,
			Description: procedure.Name,
			Amount:      procedure.Cost,
		})
		invoice.Total += procedure.Cost
	}

	if err := h.DB.Create(&invoice).Error; err != nil {
		utils.InternalServerError(c, "Failed to create invoice: "+err.Error())
		return
	}

	utils.Created(c, "Invoice created successfully", invoice)
}

// ListInvoices handles listing invoices. Filters: patient, status.
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	query := h.DB.Model(&models.Invoice{}).Preload("Items").Preload("Payments")
	if patientID := c.Query("patient"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var invoices []models.Invoice
	if err := query.Order("created_at desc").Find(&invoices).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch invoices: "+err.Error())
		return
	}
	utils.Success(c, "Invoices fetched successfully", invoices)
}

// GetInvoice handles fetching a single invoice with items and payments.
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")

	var invoice models.Invoice
	err := h.DB.Preload("Items").Preload("Payments").First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Invoice not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Invoice fetched successfully", invoice)
}

// RecordPaymentRequest represents the request body for recording a payment.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"omitempty,oneof=cash card transfer"`
	Notes  string  `json:"notes"`
}

// RecordPayment handles recording money received against an invoice and
// re-deriving its payment status.
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	id := c.Param("id")

	var invoice models.Invoice
	if err := h.DB.Preload("Payments").First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Invoice not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req RecordPaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	payment := models.Payment{
		InvoiceID:  invoice.ID,
		Amount:     req.Amount,
		Method:     req.Method,
		ReceivedAt: time.Now(),
		Notes:      req.Notes,
	}
	if payment.Method == "" {
		payment.Method = "cash"
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		invoice.Payments = append(invoice.Payments, payment)
		invoice.RecalculateStatus()
		return tx.Model(&invoice).Update("status", invoice.Status).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to record payment: "+err.Error())
		return
	}

	utils.Success(c, "Payment recorded successfully", invoice)
}
