package postgrest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

const (
	tableInvoices     = "invoices"
	tableInvoiceItems = "invoice_items"

	// selectWithItems cabecera más líneas en una sola lectura (recurso anidado).
	selectWithItems = "*,invoice_items(id,description,quantity,unit_price,total)"

	selectHistory = "id,invoice_number,customer_name,customer_email,customer_phone,customer_address," +
		"customer_city,customer_state,customer_postal_code,customer_country,invoice_date,created_at"

	dateLayout = "2006-01-02"
)

type invoiceRow struct {
	ID                 string          `json:"id,omitempty"`
	InvoiceNumber      string          `json:"invoice_number"`
	CustomerName       string          `json:"customer_name"`
	CustomerEmail      string          `json:"customer_email"`
	CustomerPhone      string          `json:"customer_phone"`
	CustomerAddress    string          `json:"customer_address"`
	CustomerCity       string          `json:"customer_city"`
	CustomerState      string          `json:"customer_state"`
	CustomerPostalCode string          `json:"customer_postal_code"`
	CustomerCountry    string          `json:"customer_country"`
	InvoiceDate        string          `json:"invoice_date"`
	DueDate            string          `json:"due_date,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	Total              decimal.Decimal `json:"total"`
	PaymentStatus      string          `json:"payment_status,omitempty"`
	Notes              string          `json:"notes"`
	Terms              string          `json:"terms"`
	CreatedAt          *time.Time      `json:"created_at,omitempty"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
	Items              []itemRow       `json:"invoice_items,omitempty"`
}

type itemRow struct {
	ID          string          `json:"id,omitempty"`
	InvoiceID   string          `json:"invoice_id,omitempty"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

func toInvoiceRow(inv *entity.Invoice) invoiceRow {
	c := inv.Customer
	row := invoiceRow{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		CustomerPhone:      c.Phone,
		CustomerAddress:    c.Address,
		CustomerCity:       c.City,
		CustomerState:      c.State,
		CustomerPostalCode: c.PostalCode,
		CustomerCountry:    c.Country,
		InvoiceDate:        inv.InvoiceDate.Format(dateLayout),
		DueDate:            inv.DueDate.Format(dateLayout),
		Subtotal:           inv.Subtotal,
		TaxRate:            inv.TaxRate,
		TaxAmount:          inv.TaxAmount,
		Total:              inv.Total,
		PaymentStatus:      string(inv.PaymentStatus),
		Notes:              inv.Notes,
		Terms:              inv.Terms,
	}
	if !inv.CreatedAt.IsZero() {
		t := inv.CreatedAt
		row.CreatedAt = &t
	}
	if !inv.UpdatedAt.IsZero() {
		t := inv.UpdatedAt
		row.UpdatedAt = &t
	}
	return row
}

func (r invoiceRow) toEntity() *entity.Invoice {
	inv := &entity.Invoice{
		ID:            r.ID,
		InvoiceNumber: r.InvoiceNumber,
		Customer: entity.Customer{
			Name:       r.CustomerName,
			Email:      r.CustomerEmail,
			Phone:      r.CustomerPhone,
			Address:    r.CustomerAddress,
			City:       r.CustomerCity,
			State:      r.CustomerState,
			PostalCode: r.CustomerPostalCode,
			Country:    r.CustomerCountry,
		},
		InvoiceDate:   parseDate(r.InvoiceDate),
		DueDate:       parseDate(r.DueDate),
		Subtotal:      r.Subtotal,
		TaxRate:       r.TaxRate,
		TaxAmount:     r.TaxAmount,
		Total:         r.Total,
		PaymentStatus: entity.PaymentStatus(r.PaymentStatus),
		Notes:         r.Notes,
		Terms:         r.Terms,
		Items:         make([]*entity.InvoiceItem, 0, len(r.Items)),
	}
	if r.CreatedAt != nil {
		inv.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		inv.UpdatedAt = *r.UpdatedAt
	}
	for _, it := range r.Items {
		inv.Items = append(inv.Items, &entity.InvoiceItem{
			ID:          it.ID,
			InvoiceID:   r.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return inv
}

// parseDate acepta "2006-01-02" y marcas de tiempo completas.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// InvoiceRepo implementa repository.InvoiceRepository sobre el API REST.
type InvoiceRepo struct {
	c *Client
}

// NewInvoiceRepository construye el repositorio.
func NewInvoiceRepository(c *Client) *InvoiceRepo {
	return &InvoiceRepo{c: c}
}

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// Create inserta la cabecera (sin líneas).
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	row := toInvoiceRow(inv)
	if err := r.c.From(tableInvoices).Insert(ctx, row, nil); err != nil {
		return mapWriteErr("insert invoice", err)
	}
	return nil
}

// CreateItems inserta todas las líneas en una sola petición.
func (r *InvoiceRepo) CreateItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]itemRow, 0, len(items))
	for i, it := range items {
		rows = append(rows, itemRow{
			ID:          it.ID,
			InvoiceID:   invoiceID,
			Position:    i,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	if err := r.c.From(tableInvoiceItems).Insert(ctx, rows, nil); err != nil {
		return mapWriteErr("insert invoice items", err)
	}
	return nil
}

// Update reemplaza los campos de la cabecera.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	row := toInvoiceRow(inv)
	row.ID = ""
	row.CreatedAt = nil
	var out []invoiceRow
	if err := r.c.From(tableInvoices).Eq("id", inv.ID).Update(ctx, row, &out); err != nil {
		return mapWriteErr("update invoice", err)
	}
	if len(out) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra e inserta las líneas (dos peticiones, sin transacción).
func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	if err := r.c.From(tableInvoiceItems).Eq("invoice_id", invoiceID).Delete(ctx); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return r.CreateItems(ctx, invoiceID, items)
}

// UpdatePaymentStatus cambia sólo el estado de pago.
func (r *InvoiceRepo) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error {
	patch := map[string]any{
		"payment_status": string(status),
		"updated_at":     time.Now().UTC(),
	}
	var out []invoiceRow
	if err := r.c.From(tableInvoices).Eq("id", id).Update(ctx, patch, &out); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if len(out) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra líneas y cabecera.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if err := r.c.From(tableInvoiceItems).Eq("invoice_id", id).Delete(ctx); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	if err := r.c.From(tableInvoices).Eq("id", id).Delete(ctx); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// GetByID lee cabecera y líneas; nil, nil si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.one(ctx, r.withItems().Eq("id", id).Limit(1))
}

// GetByNumber busca por número exacto.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return r.one(ctx, r.withItems().Eq("invoice_number", number).Limit(1))
}

// List aplica filtros, orden (fecha desc) y paginación.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	q := applyInvoiceFilter(r.withItems(), f).
		Order("invoice_date", false).
		Order("created_at", false).
		Limit(f.Limit).
		Offset(f.Offset)
	var rows []invoiceRow
	if err := q.Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return toEntities(rows), nil
}

// Count total de facturas que cumplen el filtro.
func (r *InvoiceRepo) Count(ctx context.Context, f repository.InvoiceFilter) (int, error) {
	n, err := applyInvoiceFilter(r.c.From(tableInvoices), f).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// ListCustomerHistory cabeceras livianas para sugerencias de cliente.
func (r *InvoiceRepo) ListCustomerHistory(ctx context.Context, f repository.CustomerHistoryFilter) ([]*entity.Invoice, error) {
	q := r.c.From(tableInvoices).Select(selectHistory)
	if term := sanitizeTerm(f.NameContains); term != "" {
		q.ILike("customer_name", "*"+term+"*")
	}
	if f.Phone != "" {
		q.Eq("customer_phone", f.Phone)
	}
	q.Order("invoice_date", false).Order("created_at", false).Limit(f.Limit)
	var rows []invoiceRow
	if err := q.Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("customer history: %w", err)
	}
	return toEntities(rows), nil
}

// InvoiceNumbers números que empiezan por prefix.
func (r *InvoiceRepo) InvoiceNumbers(ctx context.Context, prefix string) ([]string, error) {
	var rows []struct {
		InvoiceNumber string `json:"invoice_number"`
	}
	q := r.c.From(tableInvoices).Select("invoice_number").Like("invoice_number", sanitizeTerm(prefix)+"*")
	if err := q.Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("invoice numbers: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.InvoiceNumber)
	}
	return out, nil
}

// withItems selecciona cabecera y líneas en el orden en que se capturaron.
func (r *InvoiceRepo) withItems() *Query {
	return r.c.From(tableInvoices).Select(selectWithItems).OrderEmbedded(tableInvoiceItems, "position", true)
}

func (r *InvoiceRepo) one(ctx context.Context, q *Query) (*entity.Invoice, error) {
	var rows []invoiceRow
	if err := q.Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toEntity(), nil
}

func applyInvoiceFilter(q *Query, f repository.InvoiceFilter) *Query {
	if f.Status != "" {
		q.Eq("payment_status", string(f.Status))
	}
	if f.DueBefore != nil {
		q.Lt("due_date", f.DueBefore.Format(dateLayout))
	}
	if f.DateFrom != nil {
		q.Gte("invoice_date", f.DateFrom.Format(dateLayout))
	}
	if f.DateTo != nil {
		q.Lte("invoice_date", f.DateTo.Format(dateLayout))
	}
	if term := sanitizeTerm(f.Search); term != "" {
		p := "*" + term + "*"
		q.Or(
			"invoice_number.ilike."+p,
			"customer_name.ilike."+p,
			"customer_email.ilike."+p,
			"customer_phone.ilike."+p,
		)
	}
	return q
}

func toEntities(rows []invoiceRow) []*entity.Invoice {
	out := make([]*entity.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out
}

func mapWriteErr(op string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Conflict() {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
