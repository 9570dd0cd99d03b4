// Package pdf genera el documento imprimible de la factura (A4) con maroto v2.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + contacto   │  INVOICE + N° + fechas       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BILL TO: nombre / email / teléfono / dirección             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Description | Qty | Unit Price | Total              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Tax (x%) / Total                        │
//	│  NOTES / TERMS                                               │
//	│  FOOTER: Thank you for your business!                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	appbilling "github.com/jhoicas/invoice-manager/internal/application/billing"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const displayDate = "Jan 2, 2006"

// ── Generator ─────────────────────────────────────────────────────────────────

// Options formato de importes.
type Options struct {
	CurrencySymbol string // "$" por defecto
	Locale         string // etiqueta BCP 47 para separadores ("en", "es-CO"); "en" por defecto
}

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	symbol  string
	printer *message.Printer
}

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(opts Options) *MarotoPDFGenerator {
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "$"
	}
	tag, err := language.Parse(opts.Locale)
	if err != nil || opts.Locale == "" {
		tag = language.English
	}
	return &MarotoPDFGenerator{symbol: opts.CurrencySymbol, printer: message.NewPrinter(tag)}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(ctx context.Context, doc appbilling.InvoiceDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	author := doc.Company.Name
	if author == "" {
		author = "invoice-manager"
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Invoice "+doc.InvoiceNumber, true).
		WithAuthor(author, true).
		Build()

	m := maroto.New(cfg)
	if err := m.RegisterFooter(footerRow()); err != nil {
		return nil, fmt.Errorf("pdf: registrar pie: %w", err)
	}

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(billToRow(doc))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(g.itemRows(doc)...)

	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(doc))
	m.AddRows(remarksRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: datos de la empresa (izq) y número + fechas + estado (der).
func headerRow(doc appbilling.InvoiceDocument) core.Row {
	c := doc.Company
	contact := joinNonEmpty("  |  ", c.Phone, c.Email, c.Website)
	return row.New(32).Add(
		col.New(7).Add(
			text.New(nonEmpty(c.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Address, props.Text{Size: 9, Top: 9, Color: colorGray}),
			text.New(contact, props.Text{Size: 9, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 18, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Invoice #: "+doc.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 11,
			}),
			text.New("Date: "+formatDate(doc.InvoiceDate.IsZero(), doc.InvoiceDate.Format(displayDate)), props.Text{
				Size: 9, Align: align.Right, Top: 17, Color: colorGray,
			}),
			text.New("Due Date: "+formatDate(doc.DueDate.IsZero(), doc.DueDate.Format(displayDate)), props.Text{
				Size: 9, Align: align.Right, Top: 22, Color: colorGray,
			}),
			text.New("Status: "+strings.ToUpper(string(doc.PaymentStatus)), props.Text{
				Size: 9, Align: align.Right, Top: 27, Color: colorGray,
			}),
		),
	)
}

// billToRow: datos del cliente.
func billToRow(doc appbilling.InvoiceDocument) core.Row {
	cu := doc.Customer
	return row.New(26).Add(
		col.New(12).Add(
			text.New("Bill To:", props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
			text.New(cu.Name, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6}),
			text.New(joinNonEmpty("  |  ", cu.Email, cu.Phone), props.Text{Size: 9, Top: 12, Color: colorGray}),
			text.New(cu.FullAddress(), props.Text{Size: 9, Top: 17, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Description", 6, align.Left),
		h("Qty", 1, align.Center),
		h("Unit Price", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

// itemRows: una fila por línea, en el orden capturado. Las páginas nuevas las agrega maroto.
func (g *MarotoPDFGenerator) itemRows(doc appbilling.InvoiceDocument) []core.Row {
	rows := make([]core.Row, 0, len(doc.Items))
	for _, it := range doc.Items {
		rows = append(rows, row.New(7).Add(
			col.New(6).Add(text.New(it.Description, props.Text{Size: 9, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 9, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(it.UnitPrice), props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(it.Total), props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(doc appbilling.InvoiceDocument) core.Row {
	label := func(s string, top float64, grand bool) core.Component {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}
		if grand {
			p.Size, p.Color = 11, colorPrimary
		}
		return text.New(s, p)
	}
	value := func(s string, top float64, grand bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}
		if grand {
			p.Style, p.Size, p.Color = fontstyle.Bold, 11, colorPrimary
		}
		return text.New(s, p)
	}
	taxLabel := fmt.Sprintf("Tax (%s%%):", doc.TaxRate.String())

	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1, false),
			label(taxLabel, 7, false),
			label("Total:", 14, true),
		),
		col.New(3).Add(
			value(g.money(doc.Subtotal), 1, false),
			value(g.money(doc.TaxAmount), 7, false),
			value(g.money(doc.Total), 14, true),
		),
	)
}

// remarksRows: notas y términos, sólo si existen.
func remarksRows(doc appbilling.InvoiceDocument) []core.Row {
	var rows []core.Row
	add := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		rows = append(rows,
			row.New(6).Add(col.New(12).Add(text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1,
			}))),
			row.New(12).Add(col.New(12).Add(text.New(body, props.Text{Size: 9, Color: colorGray}))),
		)
	}
	add("Notes", doc.Notes)
	add("Terms & Conditions", doc.Terms)
	return rows
}

func footerRow() core.Row {
	return row.New(10).Add(col.New(12).Add(text.New("Thank you for your business!", props.Text{
		Size: 9, Align: align.Center, Color: colorGray, Top: 3,
	})))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separadores de miles del idioma y 2 decimales: "$1,234.50".
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	sign := ""
	if f < 0 {
		sign, f = "-", -f
	}
	return sign + g.symbol + g.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

func formatDate(zero bool, s string) string {
	if zero {
		return "—"
	}
	return s
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
