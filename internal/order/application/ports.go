package application

import (
	"context"

	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

type OrderRepository interface {
	Upsert(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, o domain.Order) error
}
