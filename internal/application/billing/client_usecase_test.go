package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/memory"
)

func TestClientUseCase_CRUD(t *testing.T) {
	ctx := context.Background()
	uc := billing.NewClientUseCase(memory.NewStore().Clients())

	created, err := uc.Create(ctx, dto.ClientRequest{Name: " Acme ", Email: "info@acme.test", Phone: "555-0101", GSTNumber: "GST-1"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", created.Name)
	assert.NotEmpty(t, created.ID)

	_, err = uc.Create(ctx, dto.ClientRequest{Name: "Globex", Email: "sales@globex.test"})
	require.NoError(t, err)

	list, err := uc.List(ctx, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Page.Total)
	assert.Equal(t, 20, list.Page.Limit)

	found, err := uc.List(ctx, "GLOBEX", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Globex", found.Items[0].Name)

	updated, err := uc.Update(ctx, created.ID, dto.ClientRequest{Name: "Acme S.A.", City: "Medellín"})
	require.NoError(t, err)
	assert.Equal(t, "Medellín", updated.City)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientUseCase_Validacion(t *testing.T) {
	uc := billing.NewClientUseCase(memory.NewStore().Clients())
	_, err := uc.Create(context.Background(), dto.ClientRequest{Name: "", Email: "x"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "email")
}
