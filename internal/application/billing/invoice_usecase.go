package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/application/form"
	"github.com/jhoicas/invoice-manager/internal/domain"
	dbilling "github.com/jhoicas/invoice-manager/internal/domain/billing"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

// PreviewNumber número mostrado en documentos que aún no se han guardado.
const PreviewNumber = "PREVIEW"

// InvoiceConfig parámetros de facturación.
type InvoiceConfig struct {
	DueDays               int
	NumberPrefix          string
	PreserveManualDueDate bool
	Now                   func() time.Time // nil = time.Now
}

// InvoiceUseCase casos de uso de facturas: alta, edición, estado de pago, consultas.
type InvoiceUseCase struct {
	repo repository.InvoiceRepository
	cfg  InvoiceConfig
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(repo repository.InvoiceRepository, cfg InvoiceConfig) *InvoiceUseCase {
	if cfg.DueDays <= 0 {
		cfg.DueDays = dbilling.DefaultDueDays
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = dbilling.DefaultNumberPrefix
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &InvoiceUseCase{repo: repo, cfg: cfg}
}

func (uc *InvoiceUseCase) today() time.Time { return dbilling.DateOnly(uc.cfg.Now()) }

func (uc *InvoiceUseCase) draftOptions() []form.Option {
	policy := form.DueDateAlwaysDerive
	if uc.cfg.PreserveManualDueDate {
		policy = form.DueDatePreserveManual
	}
	return []form.Option{
		form.WithClock(uc.cfg.Now),
		form.WithDueDays(uc.cfg.DueDays),
		form.WithDueDatePolicy(policy),
	}
}

// Draft aplica la petición sobre un borrador nuevo (base nil) o sobre una factura existente.
// No valida; los errores devueltos son de formato (fechas, estado).
func (uc *InvoiceUseCase) Draft(in dto.InvoiceRequest, base *entity.Invoice) (*form.Draft, error) {
	var d *form.Draft
	if base != nil {
		d = form.FromInvoice(base, uc.draftOptions()...)
	} else {
		d = form.New(uc.draftOptions()...)
	}

	ve := domain.NewValidationError()
	if in.InvoiceNumber != "" {
		d.SetInvoiceNumber(strings.TrimSpace(in.InvoiceNumber))
	}
	c := in.Customer
	d.SetCustomer(form.Customer{
		Name:       strings.TrimSpace(c.Name),
		Email:      strings.TrimSpace(c.Email),
		Phone:      strings.TrimSpace(c.Phone),
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
	})
	if in.InvoiceDate != "" {
		t, err := time.Parse(dto.DateLayout, in.InvoiceDate)
		if err != nil {
			ve.Add("invoice_date", "formato esperado YYYY-MM-DD")
		} else {
			d.SetInvoiceDate(t)
		}
	}
	if in.DueDate != "" {
		t, err := time.Parse(dto.DateLayout, in.DueDate)
		if err != nil {
			ve.Add("due_date", "formato esperado YYYY-MM-DD")
		} else {
			d.SetDueDate(t)
		}
	}
	items := make([]form.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, form.Item{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	d.SetItems(items)
	d.SetTaxRate(in.TaxRate)
	if in.PaymentStatus != "" {
		st, err := entity.ParsePaymentStatus(in.PaymentStatus)
		if err != nil {
			ve.Add("payment_status", err.Error())
		} else {
			d.SetPaymentStatus(st)
		}
	}
	d.SetNotes(in.Notes)
	d.SetTerms(in.Terms)
	return d, ve.OrNil()
}

// Create valida y guarda una factura: cabecera y luego líneas, sin transacción.
// Si falla la escritura de líneas devuelve *PartialCreateError; la cabecera queda guardada.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	d, err := uc.Draft(in, nil)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	inv := d.Invoice()

	if inv.InvoiceNumber == "" {
		numbers, err := uc.repo.InvoiceNumbers(ctx, uc.cfg.NumberPrefix)
		if err != nil {
			return nil, fmt.Errorf("generar número de factura: %w", err)
		}
		inv.InvoiceNumber = dbilling.NextInvoiceNumber(uc.cfg.NumberPrefix, numbers)
	} else {
		existing, err := uc.repo.GetByNumber(ctx, inv.InvoiceNumber)
		if err != nil {
			return nil, fmt.Errorf("verificar número de factura: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: número de factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
	}

	now := uc.cfg.Now()
	inv.ID = uuid.New().String()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	assignItemIDs(inv)

	if err := uc.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("guardar factura: %w", err)
	}
	if err := uc.repo.CreateItems(ctx, inv.ID, inv.Items); err != nil {
		return nil, &PartialCreateError{InvoiceID: inv.ID, InvoiceNumber: inv.InvoiceNumber, Err: err}
	}
	out := ToInvoiceResponse(inv, uc.today())
	return &out, nil
}

// Update reemplaza cabecera y líneas de una factura existente (dos escrituras, sin transacción).
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	existing, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := uc.Draft(in, existing)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	inv := d.Invoice()
	if inv.InvoiceNumber != existing.InvoiceNumber {
		other, err := uc.repo.GetByNumber(ctx, inv.InvoiceNumber)
		if err != nil {
			return nil, fmt.Errorf("verificar número de factura: %w", err)
		}
		if other != nil && other.ID != existing.ID {
			return nil, fmt.Errorf("%w: número de factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
	}
	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = uc.cfg.Now()
	assignItemIDs(inv)

	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("actualizar factura: %w", err)
	}
	if err := uc.repo.ReplaceItems(ctx, inv.ID, inv.Items); err != nil {
		return nil, fmt.Errorf("reemplazar líneas de la factura %s: %w", inv.ID, err)
	}
	out := ToInvoiceResponse(inv, uc.today())
	return &out, nil
}

// UpdatePaymentStatus cambia sólo el estado de pago.
func (uc *InvoiceUseCase) UpdatePaymentStatus(ctx context.Context, id, status string) (*dto.InvoiceResponse, error) {
	st, err := entity.ParsePaymentStatus(status)
	if err != nil {
		ve := domain.NewValidationError()
		ve.Add("payment_status", err.Error())
		return nil, ve
	}
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdatePaymentStatus(ctx, id, st); err != nil {
		return nil, fmt.Errorf("actualizar estado de pago: %w", err)
	}
	inv.PaymentStatus = st
	out := ToInvoiceResponse(inv, uc.today())
	return &out, nil
}

// Delete elimina la factura y sus líneas.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.load(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar factura: %w", err)
	}
	return nil
}

// GetByID devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToInvoiceResponse(inv, uc.today())
	return &out, nil
}

// GetByNumber busca por número de factura.
func (uc *InvoiceUseCase) GetByNumber(ctx context.Context, number string) (*dto.InvoiceResponse, error) {
	inv, err := uc.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("obtener factura por número: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	out := ToInvoiceResponse(inv, uc.today())
	return &out, nil
}

// List lista facturas con filtros y paginación.
func (uc *InvoiceUseCase) List(ctx context.Context, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error) {
	q.DefaultPage()
	f, err := uc.filterFrom(q)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	total, err := uc.repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("contar facturas: %w", err)
	}
	today := uc.today()
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, inv := range list {
		out.Items = append(out.Items, ToInvoiceResponse(inv, today))
	}
	return out, nil
}

// Overdue facturas PENDING con vencimiento anterior a hoy.
func (uc *InvoiceUseCase) Overdue(ctx context.Context) ([]dto.InvoiceResponse, error) {
	today := uc.today()
	list, err := uc.repo.List(ctx, repository.InvoiceFilter{
		Status:    entity.PaymentStatusPending,
		DueBefore: &today,
	})
	if err != nil {
		return nil, fmt.Errorf("listar facturas vencidas: %w", err)
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, ToInvoiceResponse(inv, today))
	}
	return out, nil
}

// Entities devuelve entidades completas para exportaciones (sin paginar).
func (uc *InvoiceUseCase) Entities(ctx context.Context, q dto.InvoiceListQuery) ([]*entity.Invoice, error) {
	f, err := uc.filterFrom(q)
	if err != nil {
		return nil, err
	}
	f.Limit, f.Offset = 0, 0
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	return list, nil
}

// Preview recalcula totales y vencimiento de un borrador sin guardarlo.
func (uc *InvoiceUseCase) Preview(_ context.Context, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.PreviewInvoice(in)
	if err != nil {
		return nil, err
	}
	out := ToInvoiceResponse(inv, uc.today())
	return &out, nil
}

// PreviewInvoice entidad calculada a partir del borrador; número PREVIEW si viene vacío.
// Sólo se rechazan errores de formato: un borrador incompleto también se puede previsualizar.
func (uc *InvoiceUseCase) PreviewInvoice(in dto.InvoiceRequest) (*entity.Invoice, error) {
	d, err := uc.Draft(in, nil)
	if err != nil {
		return nil, err
	}
	inv := d.Invoice()
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = PreviewNumber
	}
	return inv, nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (uc *InvoiceUseCase) filterFrom(q dto.InvoiceListQuery) (repository.InvoiceFilter, error) {
	ve := domain.NewValidationError()
	f := repository.InvoiceFilter{
		Search: strings.TrimSpace(q.Q),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Status != "" {
		st, err := entity.ParsePaymentStatus(q.Status)
		if err != nil {
			ve.Add("status", err.Error())
		}
		f.Status = st
	}
	if q.From != "" {
		t, err := time.Parse(dto.DateLayout, q.From)
		if err != nil {
			ve.Add("from", "formato esperado YYYY-MM-DD")
		} else {
			f.DateFrom = &t
		}
	}
	if q.To != "" {
		t, err := time.Parse(dto.DateLayout, q.To)
		if err != nil {
			ve.Add("to", "formato esperado YYYY-MM-DD")
		} else {
			f.DateTo = &t
		}
	}
	if q.Overdue {
		if f.Status != "" && f.Status != entity.PaymentStatusPending {
			ve.Add("overdue", "sólo aplica a facturas PENDING")
		}
		today := uc.today()
		f.Status = entity.PaymentStatusPending
		f.DueBefore = &today
	}
	return f, ve.OrNil()
}

func assignItemIDs(inv *entity.Invoice) {
	for _, it := range inv.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = inv.ID
	}
}
