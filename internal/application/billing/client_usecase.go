package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/application/validation"
	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

// ClientUseCase casos de uso para clientes registrados.
type ClientUseCase struct {
	repo repository.ClientRepository
	now  func() time.Time
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo cliente.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.ClientRequest) (*dto.ClientResponse, error) {
	in = trimClient(in)
	if err := validation.Struct(in, nil).OrNil(); err != nil {
		return nil, err
	}
	now := uc.now()
	client := &entity.Client{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	applyClient(client, in)
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("crear cliente: %w", err)
	}
	out := toClientResponse(client)
	return &out, nil
}

// GetByID devuelve un cliente.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toClientResponse(c)
	return &out, nil
}

// List lista clientes; con term busca por nombre, email o teléfono.
func (uc *ClientUseCase) List(ctx context.Context, term string, page dto.PageRequest) (*dto.ClientListResponse, error) {
	page.DefaultPage()
	term = strings.TrimSpace(term)

	var (
		list []*entity.Client
		err  error
	)
	if term != "" {
		list, err = uc.repo.Search(ctx, term, page.Limit, page.Offset)
	} else {
		list, err = uc.repo.List(ctx, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	out := &dto.ClientListResponse{
		Items: make([]dto.ClientResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	if term == "" {
		total, err := uc.repo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("contar clientes: %w", err)
		}
		out.Page.Total = total
	}
	for _, c := range list {
		out.Items = append(out.Items, toClientResponse(c))
	}
	return out, nil
}

// Update reemplaza los datos del cliente.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	in = trimClient(in)
	if err := validation.Struct(in, nil).OrNil(); err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClient(c, in)
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("actualizar cliente: %w", err)
	}
	out := toClientResponse(c)
	return &out, nil
}

// Delete elimina un cliente.
func (uc *ClientUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.load(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar cliente: %w", err)
	}
	return nil
}

func (uc *ClientUseCase) load(ctx context.Context, id string) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func trimClient(in dto.ClientRequest) dto.ClientRequest {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

func applyClient(c *entity.Client, in dto.ClientRequest) {
	c.Name = in.Name
	c.ContactPerson = in.ContactPerson
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.City = in.City
	c.State = in.State
	c.PostalCode = in.PostalCode
	c.Country = in.Country
	c.GSTNumber = in.GSTNumber
}
