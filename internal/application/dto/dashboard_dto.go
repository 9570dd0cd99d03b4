package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TotalClients    int             `json:"total_clients"`
	TotalInvoices   int             `json:"total_invoices"`
	PendingInvoices int             `json:"pending_invoices"`
	OverdueInvoices int             `json:"overdue_invoices"` // pendientes con vencimiento anterior a hoy
	TotalRevenue    decimal.Decimal `json:"total_revenue"`    // suma de totales PAID
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`  // PAID con fecha de factura en el mes en curso

	RecentInvoices []InvoiceResponse `json:"recent_invoices"` // 5 más recientes por fecha

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}
