// Package form: estado de edición de una factura (borrador). Cada mutación recalcula
// totales de línea, subtotal, impuesto, total y, según la política, la fecha de vencimiento,
// y notifica a los suscriptores con la instantánea completa.
//
// Un Draft pertenece a un único dueño (una petición o sesión); no es seguro para uso concurrente.
package form

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-manager/internal/application/validation"
	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/billing"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// DueDatePolicy define qué ocurre con la fecha de vencimiento al cambiar la fecha de factura.
type DueDatePolicy int

const (
	// DueDateAlwaysDerive sobrescribe siempre el vencimiento (fecha + plazo), incluso si se editó a mano.
	DueDateAlwaysDerive DueDatePolicy = iota
	// DueDatePreserveManual conserva un vencimiento editado manualmente.
	DueDatePreserveManual
)

// Customer datos del cliente en el borrador.
type Customer struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"omitempty,email,max=200"`
	Phone      string `json:"phone" validate:"omitempty,max=50"`
	Address    string `json:"address" validate:"omitempty,max=500"`
	City       string `json:"city" validate:"omitempty,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
	Country    string `json:"country" validate:"omitempty,max=100"`
}

// Item línea del borrador. Total es derivado.
type Item struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int64           `json:"quantity" validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Total       decimal.Decimal `json:"total"`
}

// BlankItem línea inicial: cantidad 1, precio 0.
func BlankItem() Item {
	return Item{Quantity: 1, UnitPrice: decimal.Zero, Total: decimal.Zero}
}

// State instantánea del borrador.
type State struct {
	InvoiceNumber string               `json:"invoice_number" validate:"omitempty,max=50"`
	Customer      Customer             `json:"customer"`
	InvoiceDate   time.Time            `json:"invoice_date"`
	DueDate       time.Time            `json:"due_date"`
	Items         []Item               `json:"items" validate:"dive"`
	TaxRate       decimal.Decimal      `json:"tax_rate" validate:"gte=0,lte=100"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	TaxAmount     decimal.Decimal      `json:"tax_amount"`
	Total         decimal.Decimal      `json:"total"`
	PaymentStatus entity.PaymentStatus `json:"payment_status" validate:"required,oneof=PENDING PAID OVERDUE CANCELLED"`
	Notes         string               `json:"notes" validate:"omitempty,max=2000"`
	Terms         string               `json:"terms" validate:"omitempty,max=2000"`
}

func (s State) clone() State {
	out := s
	out.Items = append([]Item(nil), s.Items...)
	return out
}

// Listener recibe la instantánea tras cada mutación.
type Listener func(State)

// Option configura un Draft.
type Option func(*Draft)

// WithClock fija la fuente de "hoy" (tests).
func WithClock(now func() time.Time) Option {
	return func(d *Draft) { d.now = now }
}

// WithDueDays fija el plazo de pago en días.
func WithDueDays(days int) Option {
	return func(d *Draft) {
		if days >= 0 {
			d.dueDays = days
		}
	}
}

// WithDueDatePolicy fija la política de vencimiento.
func WithDueDatePolicy(p DueDatePolicy) Option {
	return func(d *Draft) { d.policy = p }
}

// Draft estado mutable del formulario de factura.
type Draft struct {
	state     State
	now       func() time.Time
	dueDays   int
	policy    DueDatePolicy
	dueManual bool
	listeners []Listener
}

// New crea un borrador vacío: fecha de hoy, vencimiento derivado y una línea en blanco.
func New(opts ...Option) *Draft {
	d := &Draft{now: time.Now, dueDays: billing.DefaultDueDays}
	for _, o := range opts {
		o(d)
	}
	today := billing.DateOnly(d.now())
	d.state = State{
		InvoiceDate:   today,
		DueDate:       billing.DeriveDueDateWithTerm(today, d.dueDays),
		Items:         []Item{BlankItem()},
		TaxRate:       decimal.Zero,
		PaymentStatus: entity.PaymentStatusPending,
	}
	d.recompute()
	return d
}

// FromInvoice carga una factura existente para edición. Un vencimiento distinto del
// derivado se considera editado a mano.
func FromInvoice(inv *entity.Invoice, opts ...Option) *Draft {
	d := New(opts...)
	c := inv.Customer
	d.state.InvoiceNumber = inv.InvoiceNumber
	d.state.Customer = Customer{
		Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address,
		City: c.City, State: c.State, PostalCode: c.PostalCode, Country: c.Country,
	}
	d.state.InvoiceDate = billing.DateOnly(inv.InvoiceDate)
	d.state.DueDate = billing.DateOnly(inv.DueDate)
	d.dueManual = !d.state.DueDate.Equal(billing.DeriveDueDateWithTerm(d.state.InvoiceDate, d.dueDays))
	d.state.Items = make([]Item, 0, len(inv.Items))
	for _, it := range inv.Items {
		d.state.Items = append(d.state.Items, Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	d.state.TaxRate = inv.TaxRate
	d.state.PaymentStatus = inv.PaymentStatus
	if d.state.PaymentStatus == "" {
		d.state.PaymentStatus = entity.PaymentStatusPending
	}
	d.state.Notes = inv.Notes
	d.state.Terms = inv.Terms
	d.recompute()
	return d
}

// Snapshot devuelve una copia independiente del estado actual.
func (d *Draft) Snapshot() State { return d.state.clone() }

// Subscribe registra l; se invoca de forma síncrona, en orden de registro, tras cada mutación.
// Devuelve la función para darse de baja.
func (d *Draft) Subscribe(l Listener) func() {
	d.listeners = append(d.listeners, l)
	idx := len(d.listeners) - 1
	return func() { d.listeners[idx] = nil }
}

// SetInvoiceNumber fija el número (vacío = se genera al guardar).
func (d *Draft) SetInvoiceNumber(n string) { d.mutate(func(s *State) { s.InvoiceNumber = n }) }

// SetCustomer reemplaza el bloque de cliente.
func (d *Draft) SetCustomer(c Customer) { d.mutate(func(s *State) { s.Customer = c }) }

// ApplySuggestion copia todos los campos de cliente de una sugerencia.
func (d *Draft) ApplySuggestion(sg billing.CustomerSuggestion) {
	d.SetCustomer(Customer{
		Name: sg.Name, Email: sg.Email, Phone: sg.Phone, Address: sg.Address,
		City: sg.City, State: sg.State, PostalCode: sg.PostalCode, Country: sg.Country,
	})
}

// SetInvoiceDate cambia la fecha de factura y, según la política, re-deriva el vencimiento.
func (d *Draft) SetInvoiceDate(t time.Time) {
	d.mutate(func(s *State) {
		s.InvoiceDate = billing.DateOnly(t)
		if d.policy == DueDateAlwaysDerive || !d.dueManual {
			s.DueDate = billing.DeriveDueDateWithTerm(s.InvoiceDate, d.dueDays)
			d.dueManual = false
		}
	})
}

// SetDueDate fija el vencimiento a mano.
func (d *Draft) SetDueDate(t time.Time) {
	d.mutate(func(s *State) {
		s.DueDate = billing.DateOnly(t)
		d.dueManual = true
	})
}

// AddItem agrega una línea al final y devuelve su índice.
func (d *Draft) AddItem(it Item) int {
	d.mutate(func(s *State) { s.Items = append(s.Items, it) })
	return len(d.state.Items) - 1
}

// AddBlankItem agrega una línea con cantidad 1 y precio 0.
func (d *Draft) AddBlankItem() int { return d.AddItem(BlankItem()) }

// SetItems reemplaza todas las líneas.
func (d *Draft) SetItems(items []Item) {
	d.mutate(func(s *State) { s.Items = append([]Item(nil), items...) })
}

// UpdateItem reemplaza la línea i.
func (d *Draft) UpdateItem(i int, it Item) error {
	if i < 0 || i >= len(d.state.Items) {
		return fmt.Errorf("línea %d fuera de rango: %w", i, domain.ErrInvalidInput)
	}
	d.mutate(func(s *State) { s.Items[i] = it })
	return nil
}

// RemoveItem elimina la línea i. Se permite quitar la última; el envío queda bloqueado.
func (d *Draft) RemoveItem(i int) error {
	if i < 0 || i >= len(d.state.Items) {
		return fmt.Errorf("línea %d fuera de rango: %w", i, domain.ErrInvalidInput)
	}
	d.mutate(func(s *State) {
		s.Items = append(s.Items[:i:i], s.Items[i+1:]...)
	})
	return nil
}

// SetTaxRate fija la tasa de impuesto en porcentaje.
func (d *Draft) SetTaxRate(rate decimal.Decimal) { d.mutate(func(s *State) { s.TaxRate = rate }) }

// SetPaymentStatus fija el estado de pago.
func (d *Draft) SetPaymentStatus(st entity.PaymentStatus) {
	d.mutate(func(s *State) { s.PaymentStatus = st })
}

// SetNotes fija las notas.
func (d *Draft) SetNotes(n string) { d.mutate(func(s *State) { s.Notes = n }) }

// SetTerms fija los términos.
func (d *Draft) SetTerms(t string) { d.mutate(func(s *State) { s.Terms = t }) }

// Validate comprueba el borrador antes de guardar. Sin líneas devuelve domain.ErrNoItems;
// los fallos por campo devuelven *domain.ValidationError.
func (d *Draft) Validate() error {
	if len(d.state.Items) == 0 {
		return domain.ErrNoItems
	}
	ve := validation.Struct(d.state, nil)
	if d.state.InvoiceDate.IsZero() {
		ve.Add("invoice_date", "es obligatorio")
	}
	if d.state.DueDate.IsZero() {
		ve.Add("due_date", "es obligatorio")
	}
	for i, it := range d.state.Items {
		if !validation.MaxDecimals(it.UnitPrice, 2) {
			ve.Add(fmt.Sprintf("items[%d].unit_price", i), "máximo 2 decimales")
		}
	}
	if !validation.MaxDecimals(d.state.TaxRate, 2) {
		ve.Add("tax_rate", "máximo 2 decimales")
	}
	return ve.OrNil()
}

// Invoice construye la entidad a partir del estado (sin IDs ni marcas de tiempo).
func (d *Draft) Invoice() *entity.Invoice {
	s := d.state
	c := s.Customer
	inv := &entity.Invoice{
		InvoiceNumber: s.InvoiceNumber,
		Customer: entity.Customer{
			Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address,
			City: c.City, State: c.State, PostalCode: c.PostalCode, Country: c.Country,
		},
		InvoiceDate:   s.InvoiceDate,
		DueDate:       s.DueDate,
		Items:         make([]*entity.InvoiceItem, 0, len(s.Items)),
		Subtotal:      s.Subtotal,
		TaxRate:       s.TaxRate,
		TaxAmount:     s.TaxAmount,
		Total:         s.Total,
		PaymentStatus: s.PaymentStatus,
		Notes:         s.Notes,
		Terms:         s.Terms,
	}
	for _, it := range s.Items {
		inv.Items = append(inv.Items, &entity.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return inv
}

func (d *Draft) mutate(fn func(*State)) {
	fn(&d.state)
	d.recompute()
	d.notify()
}

func (d *Draft) recompute() {
	lines := make([]billing.Line, len(d.state.Items))
	for i := range d.state.Items {
		it := &d.state.Items[i]
		it.Total = billing.LineTotal(it.Quantity, it.UnitPrice)
		lines[i] = billing.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	t := billing.ComputeTotals(lines, d.state.TaxRate)
	d.state.Subtotal, d.state.TaxAmount, d.state.Total = t.Subtotal, t.TaxAmount, t.Total
}

func (d *Draft) notify() {
	for _, l := range d.listeners {
		if l != nil {
			l(d.state.clone())
		}
	}
}
