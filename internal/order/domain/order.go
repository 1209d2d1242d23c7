package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrOrderNotFound is returned by order stores for unknown order ids.
var ErrOrderNotFound = errors.New("order not found")

type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusCollected OrderStatus = "collected"
	StatusReserved  OrderStatus = "reserved"
	StatusCanceled  OrderStatus = "canceled"
)

// Order is the aggregate both saga steps read-modify-write. Customer and
// Payment are opaque to the saga and pass through unchanged.
type Order struct {
	ID                 string          `json:"id"`
	Customer           json.RawMessage `json:"customer,omitempty"`
	Payment            json.RawMessage `json:"payment,omitempty"`
	Items              []LineItem      `json:"items"`
	TotalCents         int64           `json:"total_cents"`
	Status             OrderStatus     `json:"status"`
	Canceled           bool            `json:"canceled"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// LineItem is one product line. UnitPriceCents and ProductName are zero until
// the collector fills them from the catalog. Reserved flips to true once
// inventory has been decremented for the line, and back to false when the
// decrement is compensated.
type LineItem struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Reserved       bool   `json:"reserved"`
}

func (li LineItem) SubtotalCents() int64 {
	return int64(li.Quantity) * li.UnitPriceCents
}

func NewOrder(id string, customer, payment json.RawMessage, items []LineItem) Order {
	now := time.Now().UTC()
	return Order{
		ID:        id,
		Customer:  customer,
		Payment:   payment,
		Items:     items,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ComputedTotalCents sums the line-item subtotals at current prices.
func (o *Order) ComputedTotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.SubtotalCents()
	}
	return total
}

// Cancel marks the order canceled with reason. Canceled is absorbing: once
// set, the status never advances and the first reason is never overwritten.
func (o *Order) Cancel(reason string) {
	if o.Canceled {
		return
	}
	o.Canceled = true
	o.CancellationReason = reason
	o.Status = StatusCanceled
	o.UpdatedAt = time.Now().UTC()
}

// Terminal reports whether the order is done moving through the saga.
func (o *Order) Terminal() bool {
	return o.Canceled || o.Status == StatusReserved
}
