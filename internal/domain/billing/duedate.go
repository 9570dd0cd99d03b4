package billing

import "time"

// DefaultDueDays plazo de pago por defecto (días calendario).
const DefaultDueDays = 30

// DueSoonDays ventana en la que una factura pendiente se considera "por vencer".
const DueSoonDays = 7

// DeriveDueDate = fecha de factura + 30 días calendario.
func DeriveDueDate(invoiceDate time.Time) time.Time {
	return DeriveDueDateWithTerm(invoiceDate, DefaultDueDays)
}

// DeriveDueDateWithTerm suma days días calendario a la fecha (sólo fecha, sin hora).
func DeriveDueDateWithTerm(invoiceDate time.Time, days int) time.Time {
	return DateOnly(invoiceDate).AddDate(0, 0, days)
}

// DateOnly trunca a medianoche UTC conservando año, mes y día.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueState clasificación de vencimiento para vistas de listado.
type DueState string

const (
	DueStateNone    DueState = ""
	DueStateOverdue DueState = "overdue"
	DueStateDueSoon DueState = "due_soon"
)

// ClassifyDue: vencida si la fecha ya pasó, por vencer si faltan DueSoonDays días o menos.
// Sólo aplica a facturas pendientes; el estado de pago nunca se modifica aquí.
func ClassifyDue(pending bool, dueDate, today time.Time) DueState {
	if !pending || dueDate.IsZero() {
		return DueStateNone
	}
	due, now := DateOnly(dueDate), DateOnly(today)
	if due.Before(now) {
		return DueStateOverdue
	}
	if !due.After(now.AddDate(0, 0, DueSoonDays)) {
		return DueStateDueSoon
	}
	return DueStateNone
}
