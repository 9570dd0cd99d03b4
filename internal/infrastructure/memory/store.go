// Package memory: repositorios en memoria (STORE_DRIVER=memory y tests).
// Mismo contrato que los adaptadores remotos: sin transacciones, última escritura gana.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

// Store guarda facturas, líneas y clientes en mapas protegidos por un mutex.
type Store struct {
	mu       sync.RWMutex
	invoices map[string]*entity.Invoice
	items    map[string][]*entity.InvoiceItem
	clients  map[string]*entity.Client
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		invoices: make(map[string]*entity.Invoice),
		items:    make(map[string][]*entity.InvoiceItem),
		clients:  make(map[string]*entity.Client),
	}
}

// Invoices devuelve la vista InvoiceRepository del almacén.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

// Clients devuelve la vista ClientRepository del almacén.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{s: s} }

// InvoiceRepo implementa repository.InvoiceRepository.
type InvoiceRepo struct{ s *Store }

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

func copyInvoice(in *entity.Invoice) *entity.Invoice {
	out := *in
	out.Items = nil
	return &out
}

func copyItems(in []*entity.InvoiceItem) []*entity.InvoiceItem {
	out := make([]*entity.InvoiceItem, 0, len(in))
	for _, it := range in {
		c := *it
		out = append(out, &c)
	}
	return out
}

// Create inserta la cabecera.
func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

// CreateItems agrega líneas a una factura existente.
func (r *InvoiceRepo) CreateItems(_ context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[invoiceID]; !ok {
		return domain.ErrNotFound
	}
	r.s.items[invoiceID] = append(r.s.items[invoiceID], copyItems(items)...)
	return nil
}

// Update reemplaza la cabecera.
func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

// ReplaceItems reemplaza las líneas.
func (r *InvoiceRepo) ReplaceItems(_ context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[invoiceID]; !ok {
		return domain.ErrNotFound
	}
	r.s.items[invoiceID] = copyItems(items)
	return nil
}

// UpdatePaymentStatus cambia el estado de pago.
func (r *InvoiceRepo) UpdatePaymentStatus(_ context.Context, id string, status entity.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.PaymentStatus = status
	return nil
}

// Delete elimina la cabecera y sus líneas.
func (r *InvoiceRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.invoices, id)
	delete(r.s.items, id)
	return nil
}

// GetByID devuelve la factura con sus líneas o nil, nil.
func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(inv), nil
}

// GetByNumber busca por número exacto.
func (r *InvoiceRepo) GetByNumber(_ context.Context, number string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, inv := range r.s.invoices {
		if inv.InvoiceNumber == number {
			return r.withItems(inv), nil
		}
	}
	return nil, nil
}

// List filtra, ordena y pagina.
func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.filter(f)
	return paginate(out, f.Limit, f.Offset), nil
}

// Count cuenta las facturas que cumplen el filtro (ignora la paginación).
func (r *InvoiceRepo) Count(_ context.Context, f repository.InvoiceFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filter(f)), nil
}

// ListCustomerHistory cabeceras ordenadas de la más reciente a la más antigua.
func (r *InvoiceRepo) ListCustomerHistory(_ context.Context, f repository.CustomerHistoryFilter) ([]*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	needle := strings.ToLower(f.NameContains)
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if needle != "" && !strings.Contains(strings.ToLower(inv.Customer.Name), needle) {
			continue
		}
		if f.Phone != "" && inv.Customer.Phone != f.Phone {
			continue
		}
		out = append(out, copyInvoice(inv))
	}
	sortRecent(out)
	return paginate(out, f.Limit, 0), nil
}

// InvoiceNumbers números con el prefijo dado.
func (r *InvoiceRepo) InvoiceNumbers(_ context.Context, prefix string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for _, inv := range r.s.invoices {
		if strings.HasPrefix(inv.InvoiceNumber, prefix) {
			out = append(out, inv.InvoiceNumber)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *InvoiceRepo) withItems(inv *entity.Invoice) *entity.Invoice {
	out := copyInvoice(inv)
	out.Items = copyItems(r.s.items[inv.ID])
	return out
}

func (r *InvoiceRepo) filter(f repository.InvoiceFilter) []*entity.Invoice {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if f.Status != "" && inv.PaymentStatus != f.Status {
			continue
		}
		if f.DueBefore != nil && !inv.DueDate.Before(*f.DueBefore) {
			continue
		}
		if f.DateFrom != nil && inv.InvoiceDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && inv.InvoiceDate.After(*f.DateTo) {
			continue
		}
		if q != "" && !matchesSearch(inv, q) {
			continue
		}
		out = append(out, r.withItems(inv))
	}
	sortRecent(out)
	return out
}

func matchesSearch(inv *entity.Invoice, q string) bool {
	for _, v := range []string{inv.InvoiceNumber, inv.Customer.Name, inv.Customer.Email, inv.Customer.Phone} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func sortRecent(list []*entity.Invoice) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.InvoiceDate.Equal(b.InvoiceDate) {
			return a.InvoiceDate.After(b.InvoiceDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.InvoiceNumber > b.InvoiceNumber
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	if offset > 0 {
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ClientRepo implementa repository.ClientRepository.
type ClientRepo struct{ s *Store }

var _ repository.ClientRepository = (*ClientRepo)(nil)

// Create inserta un cliente.
func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

// GetByID devuelve el cliente o nil, nil.
func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// List ordena por nombre.
func (r *ClientRepo) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	return r.find("", limit, offset), nil
}

// Search busca en nombre, email y teléfono.
func (r *ClientRepo) Search(_ context.Context, term string, limit, offset int) ([]*entity.Client, error) {
	return r.find(strings.ToLower(strings.TrimSpace(term)), limit, offset), nil
}

// Update reemplaza el cliente.
func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

// Delete elimina el cliente.
func (r *ClientRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.clients, id)
	return nil
}

// Count total de clientes.
func (r *ClientRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.clients), nil
}

func (r *ClientRepo) find(term string, limit, offset int) []*entity.Client {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Client
	for _, c := range r.s.clients {
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(strings.ToLower(c.Email), term) &&
			!strings.Contains(strings.ToLower(c.Phone), term) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset)
}
