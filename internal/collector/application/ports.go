package application

import (
	"context"

	inventorydomain "github.com/rcoelho/order-fulfillment-saga/internal/inventory/domain"
	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

// CatalogReader is the read-only view of the inventory store the collector
// needs. Lookups return inventorydomain.ErrRecordNotFound for unknown ids.
type CatalogReader interface {
	GetRecord(ctx context.Context, productID string) (inventorydomain.Record, error)
}

type OrderRepository interface {
	Upsert(ctx context.Context, o domain.Order) error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, o domain.Order) error
}
