package enums

import "fmt"

// StockMovement labels entries in the inventory movement log.
type StockMovement string

const (
	StockMovementRestock    StockMovement = "restock"
	StockMovementSale       StockMovement = "sale"
	StockMovementAdjustment StockMovement = "adjustment"
)

var validStockMovements = []StockMovement{
	StockMovementRestock,
	StockMovementSale,
	StockMovementAdjustment,
}

// String implements fmt.Stringer.
func (s StockMovement) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockMovement.
func (s StockMovement) IsValid() bool {
	for _, candidate := range validStockMovements {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockMovement converts raw input into a StockMovement.
func ParseStockMovement(value string) (StockMovement, error) {
	for _, candidate := range validStockMovements {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement %q", value)
}
