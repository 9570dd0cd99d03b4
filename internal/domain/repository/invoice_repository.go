package repository

import (
	"context"
	"time"

	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// InvoiceFilter filtros de listado de facturas. Los campos vacíos no filtran; Limit 0 = sin límite.
// List ordena por invoice_date y created_at descendentes.
type InvoiceFilter struct {
	Status    entity.PaymentStatus
	DueBefore *time.Time // due_date < DueBefore
	DateFrom  *time.Time // invoice_date >= DateFrom
	DateTo    *time.Time // invoice_date <= DateTo
	Search    string     // número, nombre, email o teléfono del cliente (ilike)
	Limit     int
	Offset    int
}

// CustomerHistoryFilter consulta sobre el historial de clientes de las facturas.
// Los resultados vienen ordenados de la factura más reciente a la más antigua.
type CustomerHistoryFilter struct {
	NameContains string
	Phone        string
	Limit        int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// Create y CreateItems son escrituras independientes: no hay transacción entre ambas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error
	Update(ctx context.Context, invoice *entity.Invoice) error
	// ReplaceItems borra las líneas existentes e inserta las nuevas.
	ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error
	Delete(ctx context.Context, id string) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, error)
	// ListCustomerHistory devuelve cabeceras (sin líneas) para sugerencias de cliente.
	ListCustomerHistory(ctx context.Context, f CustomerHistoryFilter) ([]*entity.Invoice, error)
	// InvoiceNumbers devuelve los números existentes que empiezan por prefix.
	InvoiceNumbers(ctx context.Context, prefix string) ([]string, error)
	Count(ctx context.Context, f InvoiceFilter) (int, error)
}
