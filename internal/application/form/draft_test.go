package form_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-manager/internal/application/form"
	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/billing"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC) }
}

func newDraft(opts ...form.Option) *form.Draft {
	return form.New(append([]form.Option{form.WithClock(fixedClock())}, opts...)...)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado inicial
// ──────────────────────────────────────────────────────────────────────────────

func TestNew_EstadoInicial(t *testing.T) {
	s := newDraft().Snapshot()

	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), s.InvoiceDate)
	assert.Equal(t, time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC), s.DueDate)
	require.Len(t, s.Items, 1, "El borrador empieza con una línea en blanco")
	assert.Equal(t, int64(1), s.Items[0].Quantity)
	assert.True(t, s.Items[0].UnitPrice.IsZero())
	assert.True(t, s.Total.IsZero())
	assert.Equal(t, entity.PaymentStatusPending, s.PaymentStatus)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recalculo de totales
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_EscenarioCompleto(t *testing.T) {
	d := newDraft()
	require.NoError(t, d.UpdateItem(0, form.Item{Description: "Horas", Quantity: 3, UnitPrice: dec("10.00")}))
	d.AddItem(form.Item{Description: "Licencia", Quantity: 1, UnitPrice: dec("25.00")})
	d.SetTaxRate(dec("10"))

	s := d.Snapshot()
	assert.True(t, dec("30.00").Equal(s.Items[0].Total))
	assert.True(t, dec("55.00").Equal(s.Subtotal), "subtotal %s", s.Subtotal)
	assert.True(t, dec("5.50").Equal(s.TaxAmount), "impuesto %s", s.TaxAmount)
	assert.True(t, dec("60.50").Equal(s.Total), "total %s", s.Total)
}

func TestDraft_QuitarUnicaLineaBloqueaEnvio(t *testing.T) {
	d := newDraft()
	require.NoError(t, d.UpdateItem(0, form.Item{Description: "X", Quantity: 2, UnitPrice: dec("5")}))
	d.SetTaxRate(dec("10"))
	require.NoError(t, d.RemoveItem(0))

	s := d.Snapshot()
	assert.Empty(t, s.Items)
	assert.True(t, s.Subtotal.IsZero())
	assert.True(t, s.TaxAmount.IsZero())
	assert.True(t, s.Total.IsZero())
	assert.ErrorIs(t, d.Validate(), domain.ErrNoItems)
}

func TestDraft_RemoveItemConservaElOrden(t *testing.T) {
	d := newDraft()
	require.NoError(t, d.UpdateItem(0, form.Item{Description: "a", Quantity: 1, UnitPrice: dec("1")}))
	d.AddItem(form.Item{Description: "b", Quantity: 1, UnitPrice: dec("2")})
	d.AddItem(form.Item{Description: "c", Quantity: 1, UnitPrice: dec("3")})
	require.NoError(t, d.RemoveItem(1))

	s := d.Snapshot()
	require.Len(t, s.Items, 2)
	assert.Equal(t, "a", s.Items[0].Description)
	assert.Equal(t, "c", s.Items[1].Description)
	assert.True(t, dec("4").Equal(s.Subtotal))
}

func TestDraft_IndiceFueraDeRango(t *testing.T) {
	d := newDraft()
	assert.ErrorIs(t, d.RemoveItem(5), domain.ErrInvalidInput)
	assert.ErrorIs(t, d.UpdateItem(-1, form.BlankItem()), domain.ErrInvalidInput)
}

func TestDraft_SnapshotEsUnaCopia(t *testing.T) {
	d := newDraft()
	s := d.Snapshot()
	s.Items[0].Description = "modificado fuera"
	assert.Empty(t, d.Snapshot().Items[0].Description)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vencimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_CambiarFechaSobrescribeVencimientoManual(t *testing.T) {
	d := newDraft()
	d.SetDueDate(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	d.SetInvoiceDate(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), d.Snapshot().DueDate,
		"Con la política por defecto el vencimiento siempre se re-deriva")
}

func TestDraft_PoliticaConservaVencimientoManual(t *testing.T) {
	d := newDraft(form.WithDueDatePolicy(form.DueDatePreserveManual))
	manual := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	d.SetDueDate(manual)
	d.SetInvoiceDate(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, manual, d.Snapshot().DueDate)

	fresh := newDraft(form.WithDueDatePolicy(form.DueDatePreserveManual))
	fresh.SetInvoiceDate(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), fresh.Snapshot().DueDate,
		"Sin edición manual se sigue derivando")
}

func TestDraft_PlazoConfigurable(t *testing.T) {
	d := newDraft(form.WithDueDays(15))
	assert.Equal(t, time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC), d.Snapshot().DueDate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Suscriptores
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_SuscriptoresEnOrden(t *testing.T) {
	d := newDraft()
	var calls []string
	var last form.State
	d.Subscribe(func(s form.State) { calls = append(calls, "a"); last = s })
	unsub := d.Subscribe(func(form.State) { calls = append(calls, "b") })

	d.SetTaxRate(dec("5"))
	assert.Equal(t, []string{"a", "b"}, calls)

	unsub()
	require.NoError(t, d.UpdateItem(0, form.Item{Description: "x", Quantity: 2, UnitPrice: dec("10")}))
	assert.Equal(t, []string{"a", "b", "a"}, calls)
	assert.True(t, dec("21").Equal(last.Total), "El suscriptor recibe el estado ya recalculado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_ValidacionPorCampo(t *testing.T) {
	d := newDraft()
	d.SetCustomer(form.Customer{Email: "no-es-email"})
	require.NoError(t, d.UpdateItem(0, form.Item{Description: "", Quantity: 0, UnitPrice: dec("1.999")}))
	d.SetTaxRate(dec("150"))

	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "customer.name")
	assert.Contains(t, ve.Fields, "customer.email")
	assert.Contains(t, ve.Fields, "items[0].description")
	assert.Contains(t, ve.Fields, "items[0].quantity")
	assert.Contains(t, ve.Fields, "items[0].unit_price")
	assert.Contains(t, ve.Fields, "tax_rate")
}

func TestDraft_BorradorValidoProduceEntidad(t *testing.T) {
	d := newDraft()
	d.ApplySuggestion(billing.CustomerSuggestion{Name: "Acme", Phone: "555-0101", City: "Bogotá"})
	require.NoError(t, d.UpdateItem(0, form.Item{Description: "Soporte", Quantity: 2, UnitPrice: dec("12.50")}))
	d.SetTaxRate(dec("19"))
	require.NoError(t, d.Validate())

	inv := d.Invoice()
	assert.Equal(t, "Acme", inv.Customer.Name)
	assert.Equal(t, "Bogotá", inv.Customer.City)
	require.Len(t, inv.Items, 1)
	assert.True(t, dec("25.00").Equal(inv.Items[0].Total))
	assert.True(t, dec("29.75").Equal(inv.Total))
}

func TestFromInvoice_CargaYRecalcula(t *testing.T) {
	inv := &entity.Invoice{
		InvoiceNumber: "INV-0007",
		Customer:      entity.Customer{Name: "Globex"},
		InvoiceDate:   time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC),
		Items: []*entity.InvoiceItem{
			{Description: "a", Quantity: 2, UnitPrice: dec("3.00"), Total: dec("999")},
		},
		TaxRate:       dec("0"),
		PaymentStatus: entity.PaymentStatusPaid,
	}
	d := form.FromInvoice(inv, form.WithClock(fixedClock()), form.WithDueDatePolicy(form.DueDatePreserveManual))
	s := d.Snapshot()
	assert.Equal(t, "INV-0007", s.InvoiceNumber)
	assert.True(t, dec("6.00").Equal(s.Total), "Los totales guardados se ignoran y se recalculan")

	d.SetInvoiceDate(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, inv.DueDate, d.Snapshot().DueDate, "El vencimiento cargado cuenta como manual")
}
