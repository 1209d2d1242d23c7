// Package reconciler retries the compensations the reservation engine could
// not complete. A canceled order whose line items still carry reserved=true
// is a recorded inventory discrepancy: stock was taken and never returned.
package reconciler

import (
	"context"
	"log/slog"

	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

type OrderRepository interface {
	ListCanceledWithReservedItems(ctx context.Context) ([]domain.Order, error)
	Upsert(ctx context.Context, o domain.Order) error
}

type InventoryStore interface {
	Increment(ctx context.Context, productID string, quantity int) error
}

type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	inventory InventoryStore
}

func NewService(log *slog.Logger, repo OrderRepository, inventory InventoryStore) *Service {
	return &Service{log: log, repo: repo, inventory: inventory}
}

// Sweep returns leftover reservations to stock and clears their flags. An
// item whose increment fails again stays flagged and is picked up by the
// next sweep.
func (s *Service) Sweep(ctx context.Context) error {
	orders, err := s.repo.ListCanceledWithReservedItems(ctx)
	if err != nil {
		return err
	}

	for _, o := range orders {
		changed := false
		for i := range o.Items {
			item := &o.Items[i]
			if !item.Reserved {
				continue
			}
			if err := s.inventory.Increment(ctx, item.ProductID, item.Quantity); err != nil {
				s.log.Error("reconcile increment failed",
					"order_id", o.ID, "product_id", item.ProductID, "err", err)
				continue
			}
			item.Reserved = false
			changed = true
			s.log.Info("leftover reservation returned",
				"order_id", o.ID, "product_id", item.ProductID, "quantity", item.Quantity)
		}
		if changed {
			if err := s.repo.Upsert(ctx, o); err != nil {
				return err
			}
		}
	}
	return nil
}
