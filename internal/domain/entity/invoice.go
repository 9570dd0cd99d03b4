package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de pago de una factura. Lo fija el usuario; nunca se calcula
// automáticamente a partir de la fecha de vencimiento.
type PaymentStatus string

// Estados de pago.
const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusOverdue   PaymentStatus = "OVERDUE"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// PaymentStatuses lista los estados válidos en orden de presentación.
var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusOverdue,
	PaymentStatusCancelled,
}

// Valid indica si el estado es uno de los conocidos.
func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParsePaymentStatus acepta el estado sin distinguir mayúsculas.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("estado de pago desconocido: %q", s)
	}
	return st, nil
}

// Customer bloque de datos del cliente copiado en la cabecera de la factura
// (columnas customer_* de la tabla invoices).
type Customer struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

// FullAddress une dirección, ciudad, estado, código postal y país en una sola línea.
func (c Customer) FullAddress() string {
	if c.Address == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.Address)
	if c.City != "" {
		b.WriteString(", " + c.City)
	}
	if c.State != "" {
		b.WriteString(", " + c.State)
	}
	if c.PostalCode != "" {
		b.WriteString(" " + c.PostalCode)
	}
	if c.Country != "" {
		b.WriteString(", " + c.Country)
	}
	return b.String()
}

// Invoice representa la cabecera de una factura con sus líneas.
// Subtotal, TaxAmount y Total son derivados de Items y TaxRate.
type Invoice struct {
	ID            string
	InvoiceNumber string
	Customer      Customer
	InvoiceDate   time.Time
	DueDate       time.Time
	Items         []*InvoiceItem
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal // porcentaje 0–100
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	PaymentStatus PaymentStatus
	Notes         string
	Terms         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceItem representa una línea facturable. Pertenece exclusivamente a su factura.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal // Quantity × UnitPrice
}
