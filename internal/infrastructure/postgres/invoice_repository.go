package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, invoice_number, customer_name, customer_email, customer_phone, customer_address,
	customer_city, customer_state, customer_postal_code, customer_country,
	invoice_date, due_date, subtotal, tax_rate, tax_amount, total, payment_status,
	notes, terms, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	c := inv.Customer
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, c.Name, c.Email, c.Phone, c.Address,
		c.City, c.State, c.PostalCode, c.Country,
		inv.InvoiceDate, inv.DueDate, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total,
		string(inv.PaymentStatus), inv.Notes, inv.Terms, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return wrapWrite("insert invoice", err)
	}
	return nil
}

// CreateItems inserta las líneas en un solo INSERT multi-fila.
func (r *InvoiceRepo) CreateItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO invoice_items (id, invoice_id, position, description, quantity, unit_price, total) VALUES `)
	args := make([]any, 0, len(items)*7)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)
		args = append(args, it.ID, invoiceID, i, it.Description, it.Quantity, it.UnitPrice, it.Total)
	}
	if _, err := r.q.Exec(ctx, sb.String(), args...); err != nil {
		return wrapWrite("insert invoice items", err)
	}
	return nil
}

// Update reemplaza los campos de la cabecera.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	c := inv.Customer
	query := `
		UPDATE invoices
		SET invoice_number = $2, customer_name = $3, customer_email = $4, customer_phone = $5,
		    customer_address = $6, customer_city = $7, customer_state = $8,
		    customer_postal_code = $9, customer_country = $10,
		    invoice_date = $11, due_date = $12, subtotal = $13, tax_rate = $14,
		    tax_amount = $15, total = $16, payment_status = $17, notes = $18, terms = $19,
		    updated_at = $20
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, c.Name, c.Email, c.Phone,
		c.Address, c.City, c.State, c.PostalCode, c.Country,
		inv.InvoiceDate, inv.DueDate, inv.Subtotal, inv.TaxRate,
		inv.TaxAmount, inv.Total, string(inv.PaymentStatus), inv.Notes, inv.Terms,
		inv.UpdatedAt,
	)
	if err != nil {
		return wrapWrite("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra e inserta las líneas.
func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return r.CreateItems(ctx, invoiceID, items)
}

// UpdatePaymentStatus cambia sólo el estado de pago.
func (r *InvoiceRepo) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET payment_status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina líneas y cabecera.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura completa por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, "id", id)
}

// GetByNumber obtiene una factura completa por número.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return r.getOne(ctx, "invoice_number", number)
}

func (r *InvoiceRepo) getOne(ctx context.Context, col, v string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + col + ` = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, v))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// List aplica filtros, orden (fecha desc) y paginación.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	w := buildInvoiceWhere(f)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.sql() +
		` ORDER BY invoice_date DESC, created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + w.next(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + w.next(f.Offset)
	}
	list, err := r.queryInvoices(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Count total de facturas que cumplen el filtro.
func (r *InvoiceRepo) Count(ctx context.Context, f repository.InvoiceFilter) (int, error) {
	w := buildInvoiceWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+w.sql(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// ListCustomerHistory cabeceras para sugerencias (sin líneas).
func (r *InvoiceRepo) ListCustomerHistory(ctx context.Context, f repository.CustomerHistoryFilter) ([]*entity.Invoice, error) {
	w := &whereBuilder{}
	if strings.TrimSpace(f.NameContains) != "" {
		w.add(`customer_name ILIKE ?`, likePattern(f.NameContains))
	}
	if f.Phone != "" {
		w.add(`customer_phone = ?`, f.Phone)
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.sql() +
		` ORDER BY invoice_date DESC, created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + w.next(f.Limit)
	}
	list, err := r.queryInvoices(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("customer history: %w", err)
	}
	return list, nil
}

// InvoiceNumbers números que empiezan por prefix.
func (r *InvoiceRepo) InvoiceNumbers(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT invoice_number FROM invoices WHERE invoice_number LIKE $1`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("invoice numbers: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan invoice number: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// buildInvoiceWhere traduce InvoiceFilter a condiciones SQL con placeholders.
func buildInvoiceWhere(f repository.InvoiceFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Status != "" {
		w.add(`payment_status = ?`, string(f.Status))
	}
	if f.DueBefore != nil {
		w.add(`due_date < ?`, *f.DueBefore)
	}
	if f.DateFrom != nil {
		w.add(`invoice_date >= ?`, *f.DateFrom)
	}
	if f.DateTo != nil {
		w.add(`invoice_date <= ?`, *f.DateTo)
	}
	if strings.TrimSpace(f.Search) != "" {
		w.add(`(invoice_number ILIKE ? OR customer_name ILIKE ? OR customer_email ILIKE ? OR customer_phone ILIKE ?)`,
			likePattern(f.Search))
	}
	return w
}

func (r *InvoiceRepo) queryInvoices(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// loadItems carga las líneas de todas las facturas con una sola consulta.
func (r *InvoiceRepo) loadItems(ctx context.Context, list []*entity.Invoice) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[string]*entity.Invoice, len(list))
	for _, inv := range list {
		inv.Items = []*entity.InvoiceItem{}
		ids = append(ids, inv.ID)
		byID[inv.ID] = inv
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price, total
		FROM invoice_items WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return fmt.Errorf("scan invoice item: %w", err)
		}
		if inv := byID[it.InvoiceID]; inv != nil {
			inv.Items = append(inv.Items, &it)
		}
	}
	return rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	c := &inv.Customer
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.City, &c.State, &c.PostalCode, &c.Country,
		&inv.InvoiceDate, &inv.DueDate, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Total,
		&status, &inv.Notes, &inv.Terms, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.PaymentStatus = entity.PaymentStatus(status)
	return &inv, nil
}
