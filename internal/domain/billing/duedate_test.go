package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/invoice-manager/internal/domain/billing"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveDueDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"enero 15 a febrero 14", day(2024, time.January, 15), day(2024, time.February, 14)},
		{"cruza fin de año", day(2023, time.December, 15), day(2024, time.January, 14)},
		{"febrero bisiesto", day(2024, time.February, 1), day(2024, time.March, 2)},
		{"febrero no bisiesto", day(2023, time.February, 1), day(2023, time.March, 3)},
		{"descarta la hora", time.Date(2024, time.January, 15, 23, 59, 0, 0, time.UTC), day(2024, time.February, 14)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billing.DeriveDueDate(tt.in))
		})
	}
}

func TestDeriveDueDateWithTerm(t *testing.T) {
	assert.Equal(t, day(2024, time.January, 30), billing.DeriveDueDateWithTerm(day(2024, time.January, 15), 15))
	assert.Equal(t, day(2024, time.January, 15), billing.DeriveDueDateWithTerm(day(2024, time.January, 15), 0))
}

func TestClassifyDue(t *testing.T) {
	today := day(2024, time.March, 10)
	assert.Equal(t, billing.DueStateOverdue, billing.ClassifyDue(true, day(2024, time.March, 9), today))
	assert.Equal(t, billing.DueStateDueSoon, billing.ClassifyDue(true, day(2024, time.March, 10), today))
	assert.Equal(t, billing.DueStateDueSoon, billing.ClassifyDue(true, day(2024, time.March, 17), today))
	assert.Equal(t, billing.DueStateNone, billing.ClassifyDue(true, day(2024, time.March, 18), today))
	assert.Equal(t, billing.DueStateNone, billing.ClassifyDue(false, day(2024, time.March, 1), today),
		"Una factura pagada nunca se marca como vencida")
}
