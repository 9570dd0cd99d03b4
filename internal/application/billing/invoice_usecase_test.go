package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testNow = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newInvoiceUC(repo repository.InvoiceRepository) *billing.InvoiceUseCase {
	return billing.NewInvoiceUseCase(repo, billing.InvoiceConfig{Now: clock})
}

func scenarioRequest() dto.InvoiceRequest {
	return dto.InvoiceRequest{
		Customer: dto.CustomerDTO{Name: "Acme", Email: "billing@acme.test", Phone: "555-0101"},
		Items: []dto.InvoiceItemRequest{
			{Description: "Horas de soporte", Quantity: 3, UnitPrice: dec("10.00")},
			{Description: "Licencia", Quantity: 1, UnitPrice: dec("25.00")},
		},
		TaxRate: dec("10"),
	}
}

// failingItemsRepo simula un fallo del backend al insertar las líneas.
type failingItemsRepo struct {
	repository.InvoiceRepository
}

func (failingItemsRepo) CreateItems(context.Context, string, []*entity.InvoiceItem) error {
	return errors.New("backend: 500 insert invoice_items")
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_EscenarioTotalesYNumero(t *testing.T) {
	store := memory.NewStore()
	uc := newInvoiceUC(store.Invoices())

	out, err := uc.Create(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", out.InvoiceNumber)
	assert.True(t, dec("55.00").Equal(out.Subtotal))
	assert.True(t, dec("5.50").Equal(out.TaxAmount))
	assert.True(t, dec("60.50").Equal(out.Total))
	assert.Equal(t, "2024-01-15", out.InvoiceDate)
	assert.Equal(t, "2024-02-14", out.DueDate, "Vencimiento derivado: fecha + 30 días")
	assert.Equal(t, "PENDING", out.PaymentStatus)

	stored, err := store.Invoices().GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Horas de soporte", stored.Items[0].Description, "Se conserva el orden de las líneas")

	second, err := uc.Create(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", second.InvoiceNumber)
}

func TestCreate_IgnoraTotalesDelCliente(t *testing.T) {
	uc := newInvoiceUC(memory.NewStore().Invoices())
	req := scenarioRequest()
	req.TaxRate = dec("0")
	out, err := uc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, dec("55.00").Equal(out.Total))
}

func TestCreate_SinLineasBloqueado(t *testing.T) {
	uc := newInvoiceUC(memory.NewStore().Invoices())
	req := scenarioRequest()
	req.Items = nil
	_, err := uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNoItems)
}

func TestCreate_ValidacionPorCampo(t *testing.T) {
	uc := newInvoiceUC(memory.NewStore().Invoices())
	req := scenarioRequest()
	req.Customer.Name = ""
	req.InvoiceDate = "15/01/2024"

	_, err := uc.Create(context.Background(), req)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "invoice_date")
}

func TestCreate_NumeroDuplicado(t *testing.T) {
	uc := newInvoiceUC(memory.NewStore().Invoices())
	req := scenarioRequest()
	req.InvoiceNumber = "INV-0100"
	_, err := uc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// Escenario: la cabecera se guarda y la inserción de líneas falla.
// Se reporta el error y la cabecera queda guardada (no hay rollback).
func TestCreate_FalloEnLineasDejaCabeceraHuerfana(t *testing.T) {
	store := memory.NewStore()
	uc := newInvoiceUC(failingItemsRepo{store.Invoices()})

	_, err := uc.Create(context.Background(), scenarioRequest())
	require.Error(t, err)

	var partial *billing.PartialCreateError
	require.ErrorAs(t, err, &partial)
	assert.NotEmpty(t, partial.InvoiceID)
	assert.Equal(t, "INV-0001", partial.InvoiceNumber)

	orphan, err := store.Invoices().GetByID(context.Background(), partial.InvoiceID)
	require.NoError(t, err)
	require.NotNil(t, orphan, "La cabecera sigue en el backend")
	assert.Empty(t, orphan.Items)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / estado / borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_ReemplazaLineasYRecalcula(t *testing.T) {
	store := memory.NewStore()
	uc := newInvoiceUC(store.Invoices())
	created, err := uc.Create(context.Background(), scenarioRequest())
	require.NoError(t, err)

	req := scenarioRequest()
	req.Items = []dto.InvoiceItemRequest{{Description: "Único", Quantity: 2, UnitPrice: dec("50")}}
	req.InvoiceDate = "2024-03-01"
	updated, err := uc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber, "El número se conserva si no se envía")
	assert.True(t, dec("110.00").Equal(updated.Total))
	assert.Equal(t, "2024-03-31", updated.DueDate)

	stored, _ := store.Invoices().GetByID(context.Background(), created.ID)
	require.Len(t, stored.Items, 1)
}

func TestUpdatePaymentStatus(t *testing.T) {
	uc := newInvoiceUC(memory.NewStore().Invoices())
	created, err := uc.Create(context.Background(), scenarioRequest())
	require.NoError(t, err)

	out, err := uc.UpdatePaymentStatus(context.Background(), created.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, "PAID", out.PaymentStatus)

	_, err = uc.UpdatePaymentStatus(context.Background(), created.ID, "REFUNDED")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdatePaymentStatus(context.Background(), "no-existe", "PAID")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	uc := newInvoiceUC(memory.NewStore().Invoices())
	created, err := uc.Create(context.Background(), scenarioRequest())
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), created.ID))
	_, err = uc.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltrosYVencidas(t *testing.T) {
	store := memory.NewStore()
	uc := newInvoiceUC(store.Invoices())
	ctx := context.Background()

	old := scenarioRequest()
	old.InvoiceDate = "2023-11-01" // vence 2023-12-01
	overdue, err := uc.Create(ctx, old)
	require.NoError(t, err)

	soon := scenarioRequest()
	soon.InvoiceDate = "2023-12-20" // vence 2024-01-19
	dueSoon, err := uc.Create(ctx, soon)
	require.NoError(t, err)

	paid := scenarioRequest()
	paid.InvoiceDate = "2023-10-01"
	paid.PaymentStatus = "PAID"
	_, err = uc.Create(ctx, paid)
	require.NoError(t, err)

	all, err := uc.List(ctx, dto.InvoiceListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Page.Total)
	assert.Equal(t, dueSoon.ID, all.Items[0].ID, "Orden: fecha de factura descendente")
	assert.Equal(t, "due_soon", all.Items[0].DueState)
	assert.Equal(t, "overdue", all.Items[1].DueState)
	assert.Equal(t, "", all.Items[2].DueState, "Las pagadas no se clasifican")

	onlyOverdue, err := uc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, onlyOverdue, 1)
	assert.Equal(t, overdue.ID, onlyOverdue[0].ID)

	byQuery, err := uc.List(ctx, dto.InvoiceListQuery{Overdue: true})
	require.NoError(t, err)
	assert.Len(t, byQuery.Items, 1)

	ranged, err := uc.List(ctx, dto.InvoiceListQuery{From: "2023-11-01", To: "2023-12-31"})
	require.NoError(t, err)
	assert.Len(t, ranged.Items, 2)

	_, err = uc.List(ctx, dto.InvoiceListQuery{Status: "ARCHIVED"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByNumber(t *testing.T) {
	uc := newInvoiceUC(memory.NewStore().Invoices())
	created, err := uc.Create(context.Background(), scenarioRequest())
	require.NoError(t, err)

	got, err := uc.GetByNumber(context.Background(), created.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = uc.GetByNumber(context.Background(), "INV-9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPreview_NoPersiste(t *testing.T) {
	store := memory.NewStore()
	uc := newInvoiceUC(store.Invoices())
	out, err := uc.Preview(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, billing.PreviewNumber, out.InvoiceNumber)
	assert.True(t, dec("60.50").Equal(out.Total))

	n, _ := store.Invoices().Count(context.Background(), repository.InvoiceFilter{})
	assert.Zero(t, n)
}
