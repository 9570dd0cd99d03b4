package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id, name, contact_person, email, phone, address, city, state,
	postal_code, country, gst_number, created_at, updated_at`

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	query := `INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.City, c.State,
		c.PostalCode, c.Country, c.GSTNumber, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return wrapWrite("insert client", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// List clientes ordenados por nombre.
func (r *ClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	return r.find(ctx, &whereBuilder{}, limit, offset)
}

// Search por nombre, email o teléfono.
func (r *ClientRepo) Search(ctx context.Context, term string, limit, offset int) ([]*entity.Client, error) {
	w := &whereBuilder{}
	if strings.TrimSpace(term) != "" {
		w.add(`(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)`, likePattern(term))
	}
	return r.find(ctx, w, limit, offset)
}

// Update actualiza los datos del cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	query := `
		UPDATE clients
		SET name = $2, contact_person = $3, email = $4, phone = $5, address = $6, city = $7,
		    state = $8, postal_code = $9, country = $10, gst_number = $11, updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.City,
		c.State, c.PostalCode, c.Country, c.GSTNumber, c.UpdatedAt,
	)
	if err != nil {
		return wrapWrite("update client", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el cliente.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// Count total de clientes.
func (r *ClientRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

func (r *ClientRepo) find(ctx context.Context, w *whereBuilder, limit, offset int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients` + w.sql() + ` ORDER BY name`
	if limit > 0 {
		query += ` LIMIT ` + w.next(limit)
	}
	if offset > 0 {
		query += ` OFFSET ` + w.next(offset)
	}
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.ContactPerson, &c.Email, &c.Phone, &c.Address, &c.City, &c.State,
		&c.PostalCode, &c.Country, &c.GSTNumber, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
