package value

import (
	"github.com/cockroachdb/apd/v3"
)

// Quantity is a decimal magnitude plus an optional UCUM unit expression.
// Dimensional-compatibility checks and unit conversion are delegated to the
// quantity subpackage so this type stays a plain data holder, matching
// spec.md §3.1.
type Quantity struct {
	Value *apd.Decimal
	Unit  string // UCUM expression; "" means a dimensionless/unit-less quantity
}

func NewQuantity(v *apd.Decimal, unit string) Quantity {
	return Quantity{Value: v, Unit: unit}
}
