package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// InvoiceDocument instantánea inmutable que consume el generador de PDF.
type InvoiceDocument struct {
	Company       entity.CompanySettings
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	Customer      entity.Customer
	Items         []entity.InvoiceItem
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	PaymentStatus entity.PaymentStatus
	Notes         string
	Terms         string
}

// NewInvoiceDocument copia los datos de la factura y de la empresa.
func NewInvoiceDocument(company entity.CompanySettings, inv *entity.Invoice) InvoiceDocument {
	items := make([]entity.InvoiceItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, *it)
	}
	return InvoiceDocument{
		Company:       company,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Customer:      inv.Customer,
		Items:         items,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		PaymentStatus: inv.PaymentStatus,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
	}
}

// InvoicePDFGenerator puerto del renderizador de documentos.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// Attachment adjunto de correo.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailMessage correo saliente en texto plano.
type EmailMessage struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer puerto de envío de correo.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// CompanySettingsProvider entrega la instantánea vigente de los datos de la empresa.
type CompanySettingsProvider interface {
	Current() entity.CompanySettings
}
