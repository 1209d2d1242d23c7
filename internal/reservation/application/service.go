package application

import (
	"context"
	"errors"
	"log/slog"

	inventorydomain "github.com/rcoelho/order-fulfillment-saga/internal/inventory/domain"
	"github.com/rcoelho/order-fulfillment-saga/internal/messaging"
	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
	"github.com/rcoelho/order-fulfillment-saga/pkg/metrics"
)

// Service claims inventory for collected orders. Either every line item ends
// up reserved and the order moves to the fulfillment channel, or the reserved
// prefix is compensated and the canceled order moves to the failure channel.
type Service struct {
	log       *slog.Logger
	inventory InventoryStore
	repo      OrderRepository
	publisher Publisher
}

func NewService(log *slog.Logger, inventory InventoryStore, repo OrderRepository, publisher Publisher) *Service {
	return &Service{log: log, inventory: inventory, repo: repo, publisher: publisher}
}

// Reserve runs the reservation step for one order. Line items are processed
// strictly in their stored sequence; the first insufficient-stock failure
// halts the loop and everything reserved before it is returned to stock.
// The final snapshot is persisted last, after the publish, in every outcome.
func (s *Service) Reserve(ctx context.Context, o domain.Order) (domain.Order, error) {
	// Redelivery guard: if the stored snapshot already left this step,
	// re-running would decrement stock a second time.
	stored, err := s.repo.Get(ctx, o.ID)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return o, err
	}
	if err == nil && stored.Terminal() {
		s.log.Info("order already settled, skipping", "order_id", o.ID, "status", stored.Status)
		return stored, nil
	}

	for i := range o.Items {
		item := &o.Items[i]
		err := s.inventory.ConditionalDecrement(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, inventorydomain.ErrInsufficientStock) {
			fail := domain.InsufficientStockFailure(item.ProductID, item.ProductName)
			o.Cancel(fail.Message)
			s.log.Warn("reservation failed", "order_id", o.ID, "product_id", item.ProductID, "reason", fail.Message)
			break
		}
		if err != nil {
			return o, err
		}
		item.Reserved = true
		s.log.Info("stock reserved", "order_id", o.ID, "product_id", item.ProductID, "quantity", item.Quantity)
	}

	if o.Canceled {
		if err := s.compensate(ctx, &o); err != nil {
			// The order is still canceled and forwarded; items that could not
			// be returned keep reserved=true so the reconciler can retry.
			s.log.Error("compensation incomplete", "order_id", o.ID, "err", err)
			metrics.IncCompensationFailures()
		}
		metrics.IncOrdersCanceled("reservation")
		if err := s.publisher.Publish(ctx, messaging.ChannelFailure, o); err != nil {
			return o, err
		}
	} else {
		o.Status = domain.StatusReserved
		s.log.Info("order reserved", "order_id", o.ID)
		metrics.IncOrdersReserved()
		if err := s.publisher.Publish(ctx, messaging.ChannelFulfillment, o); err != nil {
			return o, err
		}
	}

	if err := s.repo.Upsert(ctx, o); err != nil {
		return o, err
	}
	return o, nil
}

// compensate returns every reserved line item to stock. Failures are
// collected, not fatal: each remaining item still gets its increment attempt.
func (s *Service) compensate(ctx context.Context, o *domain.Order) error {
	var errs []error
	for i := range o.Items {
		item := &o.Items[i]
		if !item.Reserved {
			continue
		}
		if err := s.inventory.Increment(ctx, item.ProductID, item.Quantity); err != nil {
			errs = append(errs, domain.CompensationFailure(item.ProductID, err))
			continue
		}
		item.Reserved = false
		metrics.IncCompensations()
		s.log.Info("stock returned", "order_id", o.ID, "product_id", item.ProductID, "quantity", item.Quantity)
	}
	return errors.Join(errs...)
}
