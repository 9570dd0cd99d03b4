// Package export: exportación de facturas a CSV (UTF-8 o Windows-1252 para Excel).
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// Encoding codificación del archivo de salida.
type Encoding string

// Codificaciones soportadas.
const (
	UTF8        Encoding = "utf-8"
	Windows1252 Encoding = "windows-1252"
)

// ParseEncoding acepta utf-8/utf8 y windows-1252/cp1252 sin distinguir mayúsculas.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "windows-1252", "cp1252":
		return Windows1252, nil
	default:
		return "", fmt.Errorf("export: codificación no soportada %q", s)
	}
}

// Header columnas del CSV de facturas.
var Header = []string{
	"invoice_number", "invoice_date", "due_date",
	"customer_name", "customer_email", "customer_phone",
	"subtotal", "tax_rate", "tax_amount", "total", "payment_status",
}

const dateLayout = "2006-01-02"

// WriteInvoicesCSV escribe una fila por factura. En Windows-1252 los caracteres
// sin representación se reemplazan en lugar de abortar la exportación.
func WriteInvoicesCSV(w io.Writer, invoices []*entity.Invoice, enc Encoding) error {
	out := w
	var tw *transform.Writer
	if enc == Windows1252 {
		tw = transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
		out = tw
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: cabecera: %w", err)
	}
	for _, inv := range invoices {
		if err := cw.Write(row(inv)); err != nil {
			return fmt.Errorf("export: factura %s: %w", inv.InvoiceNumber, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return fmt.Errorf("export: codificar: %w", err)
		}
	}
	return nil
}

func row(inv *entity.Invoice) []string {
	return []string{
		inv.InvoiceNumber,
		formatDate(inv.InvoiceDate),
		formatDate(inv.DueDate),
		inv.Customer.Name,
		inv.Customer.Email,
		inv.Customer.Phone,
		inv.Subtotal.StringFixed(2),
		inv.TaxRate.String(),
		inv.TaxAmount.StringFixed(2),
		inv.Total.StringFixed(2),
		string(inv.PaymentStatus),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
