package postgres_test

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/postgres"
)

// ──────────────────────────────────────────────────────────────────────────────
// Querier falso
// ──────────────────────────────────────────────────────────────────────────────

// assign copia values en dest exigiendo el mismo número de columnas y tipos asignables.
func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d columnas para %d destinos", len(values), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer {
			return fmt.Errorf("scan: destino %d no es puntero", i)
		}
		v := reflect.ValueOf(values[i])
		if !v.Type().AssignableTo(dv.Elem().Type()) {
			return fmt.Errorf("scan: columna %d (%s) no asignable a %s", i, v.Type(), dv.Elem().Type())
		}
		dv.Elem().Set(v)
	}
	return nil
}

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.i-1], nil }
func (r *fakeRows) Scan(dest ...any) error                       { return assign(r.data[r.i-1], dest) }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type sqlCall struct {
	sql  string
	args []any
}

// fakeQuerier responde según la tabla consultada y registra cada llamada.
type fakeQuerier struct {
	invoices [][]any
	items    [][]any
	row      fakeRow
	execTag  string
	execErr  error

	queries []sqlCall
	execs   []sqlCall
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execs = append(q.execs, sqlCall{sql, args})
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	return pgconn.NewCommandTag(q.execTag), nil
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, sqlCall{sql, args})
	if strings.Contains(sql, "FROM invoice_items") {
		return &fakeRows{data: q.items}, nil
	}
	return &fakeRows{data: q.invoices}, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.queries = append(q.queries, sqlCall{sql, args})
	return q.row
}

var _ postgres.Querier = (*fakeQuerier)(nil)

var (
	issued  = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	created = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
)

// invoiceValues fila de invoices en el orden de invoiceColumns.
func invoiceValues(id, number string) []any {
	return []any{
		id, number, "Acme", "billing@acme.test", "555-0101", "Calle 1",
		"Springfield", "IL", "62701", "US",
		issued, issued.AddDate(0, 0, 30),
		decimal.RequireFromString("55"), decimal.RequireFromString("10"),
		decimal.RequireFromString("5.5"), decimal.RequireFromString("60.5"),
		"PENDING", "nota", "términos", created, created,
	}
}

func itemValues(id, invoiceID, desc string, qty int64, price string) []any {
	p := decimal.RequireFromString(price)
	return []any{id, invoiceID, desc, qty, p, p.Mul(decimal.NewFromInt(qty))}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoiceRepo_GetByID_EscaneaCabeceraYLineas(t *testing.T) {
	q := &fakeQuerier{
		row: fakeRow{values: invoiceValues("inv-1", "INV-0001")},
		items: [][]any{
			itemValues("it-1", "inv-1", "Horas", 3, "10"),
			itemValues("it-2", "inv-1", "Licencia", 1, "25"),
		},
	}
	repo := postgres.NewInvoiceRepository(q)

	inv, err := repo.GetByID(context.Background(), "inv-1")
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.Equal(t, "INV-0001", inv.InvoiceNumber)
	assert.Equal(t, "Calle 1", inv.Customer.Address)
	assert.Equal(t, "Springfield", inv.Customer.City)
	assert.Equal(t, "IL", inv.Customer.State)
	assert.Equal(t, "62701", inv.Customer.PostalCode)
	assert.Equal(t, "US", inv.Customer.Country)
	assert.Equal(t, issued.AddDate(0, 0, 30), inv.DueDate)
	assert.True(t, decimal.RequireFromString("60.5").Equal(inv.Total))
	assert.Equal(t, entity.PaymentStatusPending, inv.PaymentStatus)
	assert.Equal(t, "términos", inv.Terms)

	require.Len(t, inv.Items, 2)
	assert.Equal(t, "Horas", inv.Items[0].Description)
	assert.Equal(t, "Licencia", inv.Items[1].Description)
	assert.True(t, decimal.NewFromInt(30).Equal(inv.Items[0].Total))

	require.Len(t, q.queries, 2)
	assert.Contains(t, q.queries[0].sql, "WHERE id = $1")
	assert.Contains(t, q.queries[1].sql, "ORDER BY invoice_id, position")
	assert.Equal(t, []string{"inv-1"}, q.queries[1].args[0])
}

func TestInvoiceRepo_GetByID_Inexistente(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	repo := postgres.NewInvoiceRepository(q)

	inv, err := repo.GetByNumber(context.Background(), "INV-9999")
	require.NoError(t, err)
	assert.Nil(t, inv)
	assert.Len(t, q.queries, 1, "Sin cabecera no se consultan líneas")
}

func TestInvoiceRepo_List_AgrupaLineasPorFactura(t *testing.T) {
	q := &fakeQuerier{
		invoices: [][]any{
			invoiceValues("inv-b", "INV-0002"),
			invoiceValues("inv-a", "INV-0001"),
			invoiceValues("inv-c", "INV-0003"),
		},
		items: [][]any{
			itemValues("a-0", "inv-a", "Primera A", 1, "1"),
			itemValues("a-1", "inv-a", "Segunda A", 1, "2"),
			itemValues("b-0", "inv-b", "Única B", 2, "5"),
		},
	}
	repo := postgres.NewInvoiceRepository(q)

	list, err := repo.List(context.Background(), repository.InvoiceFilter{
		Status: entity.PaymentStatusPending, Limit: 20, Offset: 40,
	})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "inv-b", list[0].ID, "Se conserva el orden de la consulta")
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, "Única B", list[0].Items[0].Description)

	require.Len(t, list[1].Items, 2)
	assert.Equal(t, []string{"Primera A", "Segunda A"},
		[]string{list[1].Items[0].Description, list[1].Items[1].Description})
	for _, it := range list[1].Items {
		assert.Equal(t, "inv-a", it.InvoiceID)
	}

	assert.NotNil(t, list[2].Items)
	assert.Empty(t, list[2].Items)

	listSQL := q.queries[0]
	assert.Contains(t, listSQL.sql, "ORDER BY invoice_date DESC, created_at DESC")
	assert.Contains(t, listSQL.sql, "LIMIT $2")
	assert.Contains(t, listSQL.sql, "OFFSET $3")
	assert.Equal(t, []any{"PENDING", 20, 40}, listSQL.args)
	assert.ElementsMatch(t, []string{"inv-b", "inv-a", "inv-c"}, q.queries[1].args[0])
}

func TestInvoiceRepo_List_ColumnasDesalineadasFallan(t *testing.T) {
	bad := invoiceValues("inv-1", "INV-0001")
	bad[10], bad[16] = bad[16], bad[10]
	repo := postgres.NewInvoiceRepository(&fakeQuerier{invoices: [][]any{bad}})

	_, err := repo.List(context.Background(), repository.InvoiceFilter{})
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoiceRepo_CreateItems_GuardaPosicion(t *testing.T) {
	q := &fakeQuerier{execTag: "INSERT 0 2"}
	repo := postgres.NewInvoiceRepository(q)

	err := repo.CreateItems(context.Background(), "inv-1", []*entity.InvoiceItem{
		{ID: "it-1", Description: "Horas", Quantity: 3, UnitPrice: decimal.NewFromInt(10), Total: decimal.NewFromInt(30)},
		{ID: "it-2", Description: "Licencia", Quantity: 1, UnitPrice: decimal.NewFromInt(25), Total: decimal.NewFromInt(25)},
	})
	require.NoError(t, err)
	require.Len(t, q.execs, 1, "Un solo INSERT multi-fila")

	args := q.execs[0].args
	require.Len(t, args, 14)
	assert.Equal(t, []any{"it-1", "inv-1", 0, "Horas"}, args[0:4])
	assert.Equal(t, []any{"it-2", "inv-1", 1, "Licencia"}, args[7:11])
	assert.Contains(t, q.execs[0].sql, "($8, $9, $10, $11, $12, $13, $14)")
}

func TestInvoiceRepo_UpdatePaymentStatus_Inexistente(t *testing.T) {
	repo := postgres.NewInvoiceRepository(&fakeQuerier{execTag: "UPDATE 0"})

	err := repo.UpdatePaymentStatus(context.Background(), "nope", entity.PaymentStatusPaid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceRepo_Create_Duplicado(t *testing.T) {
	repo := postgres.NewInvoiceRepository(&fakeQuerier{execErr: &pgconn.PgError{Code: "23505"}})

	err := repo.Create(context.Background(), &entity.Invoice{ID: "inv-1", InvoiceNumber: "INV-0001"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
