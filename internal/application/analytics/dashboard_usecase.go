// Package analytics contiene los casos de uso de reportes: resumen del dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/dto"
	dbilling "github.com/jhoicas/invoice-manager/internal/domain/billing"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

const dashboardRecentInvoices = 5 // facturas en el widget "recientes"

// DashboardUseCase genera el resumen de clientes, facturas e ingresos.
// Sólo lectura; delega todo en los repositorios.
type DashboardUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(invoiceRepo repository.InvoiceRepository, clientRepo repository.ClientRepository) *DashboardUseCase {
	return &DashboardUseCase{invoiceRepo: invoiceRepo, clientRepo: clientRepo, now: time.Now}
}

// WithClock fija la fuente de "hoy" (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO.
//
// Seis consultas en paralelo:
//  1. Count(clientes)
//  2. Count(facturas)
//  3. Count(PENDING)
//  4. Count(PENDING con vencimiento < hoy)
//  5. List(PAID) → ingresos totales y del mes
//  6. List(limit 5) → recientes
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	today := dbilling.DateOnly(now)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		clients, invoices, pending, overdue int
		paid, recent                        []*entity.Invoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = uc.clientRepo.Count(gctx)
		return wrap("clientes", err)
	})
	g.Go(func() (err error) {
		invoices, err = uc.invoiceRepo.Count(gctx, repository.InvoiceFilter{})
		return wrap("facturas", err)
	})
	g.Go(func() (err error) {
		pending, err = uc.invoiceRepo.Count(gctx, repository.InvoiceFilter{Status: entity.PaymentStatusPending})
		return wrap("pendientes", err)
	})
	g.Go(func() (err error) {
		overdue, err = uc.invoiceRepo.Count(gctx, repository.InvoiceFilter{
			Status:    entity.PaymentStatusPending,
			DueBefore: &today,
		})
		return wrap("vencidas", err)
	})
	g.Go(func() (err error) {
		paid, err = uc.invoiceRepo.List(gctx, repository.InvoiceFilter{Status: entity.PaymentStatusPaid})
		return wrap("pagadas", err)
	})
	g.Go(func() (err error) {
		recent, err = uc.invoiceRepo.List(gctx, repository.InvoiceFilter{Limit: dashboardRecentInvoices})
		return wrap("recientes", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total, monthly := decimal.Zero, decimal.Zero
	for _, inv := range paid {
		total = total.Add(inv.Total)
		if !inv.InvoiceDate.Before(monthStart) {
			monthly = monthly.Add(inv.Total)
		}
	}

	out := &dto.DashboardSummaryDTO{
		TotalClients:    clients,
		TotalInvoices:   invoices,
		PendingInvoices: pending,
		OverdueInvoices: overdue,
		TotalRevenue:    total.Round(2),
		MonthlyRevenue:  monthly.Round(2),
		RecentInvoices:  make([]dto.InvoiceResponse, 0, len(recent)),
		DateLabel:       monthLabel(now),
	}
	for _, inv := range recent {
		out.RecentInvoices = append(out.RecentInvoices, billing.ToInvoiceResponse(inv, today))
	}
	return out, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
