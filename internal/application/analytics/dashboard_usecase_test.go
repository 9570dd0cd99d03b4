package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-manager/internal/application/analytics"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/memory"
)

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	add := func(id string, status entity.PaymentStatus, date time.Time, total string) {
		require.NoError(t, store.Invoices().Create(ctx, &entity.Invoice{
			ID:            id,
			InvoiceNumber: id,
			Customer:      entity.Customer{Name: "Cliente " + id},
			InvoiceDate:   date,
			DueDate:       date.AddDate(0, 0, 30),
			Total:         decimal.RequireFromString(total),
			PaymentStatus: status,
			CreatedAt:     date,
		}))
	}
	add("INV-0001", entity.PaymentStatusPaid, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), "100.00")
	add("INV-0002", entity.PaymentStatusPaid, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), "50.25")
	add("INV-0003", entity.PaymentStatusPending, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), "70.00")
	add("INV-0004", entity.PaymentStatusPending, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), "10.00")
	add("INV-0005", entity.PaymentStatusCancelled, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "5.00")
	add("INV-0006", entity.PaymentStatusPending, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), "1.00")

	require.NoError(t, store.Clients().Create(ctx, &entity.Client{ID: "c1", Name: "Acme"}))

	uc := analytics.NewDashboardUseCase(store.Invoices(), store.Clients()).WithClock(func() time.Time { return now })
	got, err := uc.GetSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, got.TotalClients)
	assert.Equal(t, 6, got.TotalInvoices)
	assert.Equal(t, 3, got.PendingInvoices)
	assert.Equal(t, 2, got.OverdueInvoices, "INV-0003 vence 2024-02-09 e INV-0006 vence 2024-03-02")
	assert.True(t, decimal.RequireFromString("150.25").Equal(got.TotalRevenue), "ingresos %s", got.TotalRevenue)
	assert.True(t, decimal.RequireFromString("50.25").Equal(got.MonthlyRevenue))
	require.Len(t, got.RecentInvoices, 5)
	assert.Equal(t, "INV-0004", got.RecentInvoices[0].InvoiceNumber)
	assert.Equal(t, "Marzo 2024", got.DateLabel)
}
