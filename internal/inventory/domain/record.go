package domain

import "errors"

var (
	// ErrRecordNotFound is returned when a product id has no catalog entry.
	ErrRecordNotFound = errors.New("inventory record not found")
	// ErrInsufficientStock is returned by a conditional decrement whose
	// precondition (quantity on hand >= requested) did not hold.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Record is one catalog/stock row. The catalog is authoritative for price and
// name; QuantityOnHand is mutated only through the store's conditional
// decrement and increment operations.
type Record struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	QuantityOnHand int    `json:"quantity_on_hand"`
}
