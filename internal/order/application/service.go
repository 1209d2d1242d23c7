package application

import (
	"context"
	"errors"

	"github.com/rcoelho/order-fulfillment-saga/internal/messaging"
	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
	"github.com/rcoelho/order-fulfillment-saga/pkg/metrics"
)

var ErrNoItems = errors.New("order has no line items")

// Service is the intake side of the pipeline: it accepts a newly created
// order and hands it to the collector through the order-created channel.
type Service struct {
	repo      OrderRepository
	publisher Publisher
}

func NewService(repo OrderRepository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

func (s *Service) Submit(ctx context.Context, o domain.Order) error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return errors.New("line item quantity must be positive")
		}
	}

	if err := s.publisher.Publish(ctx, messaging.ChannelOrderCreated, o); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, o); err != nil {
		return err
	}
	metrics.IncOrdersSubmitted()
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}
