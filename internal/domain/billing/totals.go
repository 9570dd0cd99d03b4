// Package billing: reglas puras de facturación (totales, vencimiento, numeración,
// sugerencias de cliente). Sin E/S ni dependencias de infraestructura.
package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line entrada mínima para el cálculo de totales.
type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Totals resultado del cálculo de una factura.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal = cantidad × precio unitario (exacto, sin redondeo).
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// ComputeTotals recalcula subtotal, impuesto y total a partir de todas las líneas.
// Impuesto = round2(subtotal × tasa / 100); Total = subtotal + impuesto.
// No valida signos: cantidades o precios negativos se rechazan en validación.
func ComputeTotals(lines []Line, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	tax := subtotal.Mul(taxRatePercent).Div(hundred).Round(2)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
