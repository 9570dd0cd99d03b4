package repository

import (
	"context"

	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Client, error)
	// Search busca por nombre, email o teléfono (sin distinguir mayúsculas).
	Search(ctx context.Context, term string, limit, offset int) ([]*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
