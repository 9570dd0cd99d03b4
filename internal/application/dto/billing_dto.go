package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerDTO bloque de cliente de una factura.
type CustomerDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// InvoiceItemRequest línea de factura (descripción, cantidad, precio unitario).
type InvoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// InvoiceRequest body para POST /api/invoices, PUT /api/invoices/:id y la vista previa.
// Los totales nunca se leen del cliente: se recalculan en el servidor.
// Fechas en formato YYYY-MM-DD; due_date vacío = fecha de factura + plazo.
type InvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number,omitempty"`
	Customer      CustomerDTO          `json:"customer"`
	InvoiceDate   string               `json:"invoice_date,omitempty"`
	DueDate       string               `json:"due_date,omitempty"`
	Items         []InvoiceItemRequest `json:"items"`
	TaxRate       decimal.Decimal      `json:"tax_rate"`
	PaymentStatus string               `json:"payment_status,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Terms         string               `json:"terms,omitempty"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceResponse factura con líneas para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID            string                `json:"id,omitempty"`
	InvoiceNumber string                `json:"invoice_number"`
	Customer      CustomerDTO           `json:"customer"`
	InvoiceDate   string                `json:"invoice_date"`
	DueDate       string                `json:"due_date"`
	Items         []InvoiceItemResponse `json:"items"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	Total         decimal.Decimal       `json:"total"`
	PaymentStatus string                `json:"payment_status"`
	DueState      string                `json:"due_state"` // overdue | due_soon | ""
	Notes         string                `json:"notes,omitempty"`
	Terms         string                `json:"terms,omitempty"`
	CreatedAt     *time.Time            `json:"created_at,omitempty"`
	UpdatedAt     *time.Time            `json:"updated_at,omitempty"`
}

// InvoiceListQuery filtros de GET /api/invoices.
type InvoiceListQuery struct {
	Status  string `query:"status"`
	From    string `query:"from"`
	To      string `query:"to"`
	Overdue bool   `query:"overdue"`
	Q       string `query:"q"`
	PageRequest
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// UpdatePaymentStatusRequest body para PATCH /api/invoices/:id/status.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// SendInvoiceEmailRequest body para POST /api/invoices/:id/email.
// Campos vacíos usan el email del cliente y el asunto/cuerpo por defecto.
type SendInvoiceEmailRequest struct {
	To      string `json:"to" validate:"omitempty,email"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Body    string `json:"body" validate:"omitempty,max=10000"`
}

// CustomerSuggestionDTO sugerencia de autocompletado.
type CustomerSuggestionDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CustomerMatchResponse resultado de GET /api/customers/match.
type CustomerMatchResponse struct {
	Found    bool                   `json:"found"`
	Customer *CustomerSuggestionDTO `json:"customer,omitempty"`
}
