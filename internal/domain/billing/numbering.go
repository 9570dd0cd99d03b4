package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultNumberPrefix prefijo de numeración de facturas.
const DefaultNumberPrefix = "INV"

// NextInvoiceNumber devuelve PREFIX-%04d con la secuencia máxima existente + 1.
// Los números que no siguen el formato se ignoran.
func NextInvoiceNumber(prefix string, existing []string) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	head := prefix + "-"
	max := 0
	for _, n := range existing {
		if !strings.HasPrefix(n, head) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(n, head))
		if err != nil || seq < 0 {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%04d", head, max+1)
}
