package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceRecalculateStatus(t *testing.T) {
	invoice := Invoice{Total: 100}

	invoice.RecalculateStatus()
	assert.Equal(t, InvoiceUnpaid, invoice.Status)

	invoice.Payments = append(invoice.Payments, Payment{Amount: 40})
	invoice.RecalculateStatus()
	assert.Equal(t, InvoicePartial, invoice.Status)
	assert.Equal(t, 40.0, invoice.AmountPaid())

	invoice.Payments = append(invoice.Payments, Payment{Amount: 60})
	invoice.RecalculateStatus()
	assert.Equal(t, InvoicePaid, invoice.Status)

	// Overpayment still reads as paid.
	invoice.Payments = append(invoice.Payments, Payment{Amount: 5})
	invoice.RecalculateStatus()
	assert.Equal(t, InvoicePaid, invoice.Status)
}
