package models

import (
	"time"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
)

// Invoice bills the procedures of one clinical exam.
type Invoice struct {
	BaseModel
	ClinicalExamID string        `gorm:"size:36;uniqueIndex;not null" json:"clinicalExam"`
	PatientID      string        `gorm:"size:36;index;not null" json:"patient"`
	Total          float64       `gorm:"type:decimal(10,2);not null" json:"total"`
	Status         InvoiceStatus `gorm:"size:10;default:'unpaid'" json:"status"`

	// Relations
	ClinicalExam ClinicalExam  `gorm:"foreignKey:ClinicalExamID" json:"-"`
	Patient      Patient       `gorm:"foreignKey:PatientID" json:"-"`
	Items        []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Payments     []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// InvoiceItem is one billed line, mirroring a performed procedure.
type InvoiceItem struct {
	BaseModel
	InvoiceID   string  `gorm:"size:36;index;not null" json:"-"`
	ProcedureID string  `gorm:"size:36;index;not null" json:"procedure"`
	Description string  `gorm:"size:255" json:"description"`
	Amount      float64 `gorm:"type:decimal(10,2);not null" json:"amount"`

	Procedure Procedure `gorm:"foreignKey:ProcedureID" json:"-"`
}

// Payment records money received against an invoice.
type Payment struct {
	BaseModel
	InvoiceID  string    `gorm:"size:36;index;not null" json:"invoice"`
	Amount     float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method     string    `gorm:"size:20;default:'cash'" json:"method"`
	ReceivedAt time.Time `json:"receivedAt"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
}

// AmountPaid sums the recorded payments.
func (i *Invoice) AmountPaid() float64 {
	var paid float64
	for _, p := range i.Payments {
		paid += p.Amount
	}
	return paid
}

// RecalculateStatus derives the payment status from the recorded payments.
func (i *Invoice) RecalculateStatus() {
	paid := i.AmountPaid()
	switch {
	case paid <= 0:
		i.Status = InvoiceUnpaid
	case paid < i.Total:
		i.Status = InvoicePartial
	default:
		i.Status = InvoicePaid
	}
}
