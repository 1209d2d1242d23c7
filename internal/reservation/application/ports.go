package application

import (
	"context"

	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

// InventoryStore is the stock side of the inventory store. The conditional
// decrement must be atomic at the store: it only applies when the quantity on
// hand covers the request, and concurrent decrements for the same product
// serialize there, never in this process.
type InventoryStore interface {
	ConditionalDecrement(ctx context.Context, productID string, quantity int) error
	Increment(ctx context.Context, productID string, quantity int) error
}

type OrderRepository interface {
	Upsert(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, o domain.Order) error
}
