package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/invoice-manager/internal/domain/billing"
)

func TestNextInvoiceNumber(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		existing []string
		want     string
	}{
		{"sin facturas", "INV", nil, "INV-0001"},
		{"máximo más uno", "INV", []string{"INV-0003", "INV-0010", "INV-0002"}, "INV-0011"},
		{"ignora formatos ajenos", "INV", []string{"INV-ABC", "FAC-0099", "INV-0004"}, "INV-0005"},
		{"supera cuatro dígitos", "INV", []string{"INV-9999"}, "INV-10000"},
		{"prefijo vacío usa INV", "", []string{"INV-0007"}, "INV-0008"},
		{"prefijo propio", "FAC", []string{"FAC-0001", "INV-0050"}, "FAC-0002"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, billing.NextInvoiceNumber(tc.prefix, tc.existing))
		})
	}
}
