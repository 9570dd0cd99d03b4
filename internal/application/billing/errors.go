package billing

import "fmt"

// PartialCreateError la cabecera se guardó pero la escritura de líneas falló.
// La cabecera queda en el backend sin líneas; no se revierte.
type PartialCreateError struct {
	InvoiceID     string
	InvoiceNumber string
	Err           error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("factura %s (%s) guardada sin líneas: %v", e.InvoiceNumber, e.InvoiceID, e.Err)
}

func (e *PartialCreateError) Unwrap() error { return e.Err }
