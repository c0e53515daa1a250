package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderContribution is one order position that books workload onto a task.
// PersonDays is null when the position carries no workload figure.
type OrderContribution struct {
	ID             string
	OrderNumber    int
	PositionNumber int
	TaskID         int64
	Title          string
	PersonDays     decimal.NullDecimal
}

// Key formats the order/position pair the way invoices reference it, e.g. "4711.2".
func (o OrderContribution) Key() string {
	return fmt.Sprintf("%d.%d", o.OrderNumber, o.PositionNumber)
}
