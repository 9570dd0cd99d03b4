package postgrest

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

const tableClients = "clients"

type clientRow struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	ContactPerson string     `json:"contact_person"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	PostalCode    string     `json:"postal_code"`
	Country       string     `json:"country"`
	GSTNumber     string     `json:"gst_number"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func toClientRow(c *entity.Client) clientRow {
	row := clientRow{
		ID: c.ID, Name: c.Name, ContactPerson: c.ContactPerson, Email: c.Email, Phone: c.Phone,
		Address: c.Address, City: c.City, State: c.State, PostalCode: c.PostalCode,
		Country: c.Country, GSTNumber: c.GSTNumber,
	}
	if !c.CreatedAt.IsZero() {
		t := c.CreatedAt
		row.CreatedAt = &t
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		row.UpdatedAt = &t
	}
	return row
}

func (r clientRow) toEntity() *entity.Client {
	c := &entity.Client{
		ID: r.ID, Name: r.Name, ContactPerson: r.ContactPerson, Email: r.Email, Phone: r.Phone,
		Address: r.Address, City: r.City, State: r.State, PostalCode: r.PostalCode,
		Country: r.Country, GSTNumber: r.GSTNumber,
	}
	if r.CreatedAt != nil {
		c.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		c.UpdatedAt = *r.UpdatedAt
	}
	return c
}

// ClientRepo implementa repository.ClientRepository sobre el API REST.
type ClientRepo struct {
	c *Client
}

// NewClientRepository construye el repositorio.
func NewClientRepository(c *Client) *ClientRepo { return &ClientRepo{c: c} }

var _ repository.ClientRepository = (*ClientRepo)(nil)

// Create inserta un cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	if err := r.c.From(tableClients).Insert(ctx, toClientRow(c), nil); err != nil {
		return mapWriteErr("insert client", err)
	}
	return nil
}

// GetByID devuelve el cliente o nil, nil.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	var rows []clientRow
	if err := r.c.From(tableClients).Select("*").Eq("id", id).Limit(1).Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toEntity(), nil
}

// List ordena por nombre.
func (r *ClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	return r.find(ctx, r.c.From(tableClients).Select("*"), limit, offset)
}

// Search busca en nombre, email y teléfono.
func (r *ClientRepo) Search(ctx context.Context, term string, limit, offset int) ([]*entity.Client, error) {
	q := r.c.From(tableClients).Select("*")
	if t := sanitizeTerm(term); t != "" {
		p := "*" + t + "*"
		q.Or("name.ilike."+p, "email.ilike."+p, "phone.ilike."+p)
	}
	return r.find(ctx, q, limit, offset)
}

// Update reemplaza los datos del cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	row := toClientRow(c)
	row.ID = ""
	row.CreatedAt = nil
	var out []clientRow
	if err := r.c.From(tableClients).Eq("id", c.ID).Update(ctx, row, &out); err != nil {
		return mapWriteErr("update client", err)
	}
	if len(out) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el cliente.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	if err := r.c.From(tableClients).Eq("id", id).Delete(ctx); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// Count total de clientes.
func (r *ClientRepo) Count(ctx context.Context) (int, error) {
	n, err := r.c.From(tableClients).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

func (r *ClientRepo) find(ctx context.Context, q *Query, limit, offset int) ([]*entity.Client, error) {
	var rows []clientRow
	if err := q.Order("name", true).Limit(limit).Offset(offset).Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]*entity.Client, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
