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

// Service prices and validates newly created orders against the catalog and
// routes them to the reservation channel, or to the failure channel with the
// order canceled.
type Service struct {
	log       *slog.Logger
	catalog   CatalogReader
	repo      OrderRepository
	publisher Publisher
}

func NewService(log *slog.Logger, catalog CatalogReader, repo OrderRepository, publisher Publisher) *Service {
	return &Service{log: log, catalog: catalog, repo: repo, publisher: publisher}
}

// Collect runs the collection step for one order. A catalog miss or price
// mismatch cancels the order and routes it to the failure channel; any other
// error is an infrastructure failure and is returned without persisting, so
// the trigger redelivers. The final snapshot is persisted last, after the
// publish, in every outcome.
func (s *Service) Collect(ctx context.Context, o domain.Order) (domain.Order, error) {
	fail, err := s.price(ctx, &o)
	if err != nil {
		return o, err
	}

	if fail != nil {
		o.Cancel(fail.Message)
		s.log.Warn("order collection failed",
			"order_id", o.ID, "kind", fail.Kind, "product_id", fail.ProductID, "reason", fail.Message)
		metrics.IncOrdersCanceled("collector")
		if err := s.publisher.Publish(ctx, messaging.ChannelFailure, o); err != nil {
			return o, err
		}
	} else {
		o.Status = domain.StatusCollected
		s.log.Info("order collected", "order_id", o.ID, "total_cents", o.TotalCents)
		metrics.IncOrdersCollected()
		if err := s.publisher.Publish(ctx, messaging.ChannelReservation, o); err != nil {
			return o, err
		}
	}

	if err := s.repo.Upsert(ctx, o); err != nil {
		return o, err
	}
	return o, nil
}

// price enriches every line item from the catalog and verifies the total.
// The first catalog miss wins: items after it are left unpriced. The catalog
// is authoritative for price; whatever the caller put on the items is
// overwritten.
func (s *Service) price(ctx context.Context, o *domain.Order) (*domain.StepFailure, error) {
	for i := range o.Items {
		item := &o.Items[i]
		rec, err := s.catalog.GetRecord(ctx, item.ProductID)
		if errors.Is(err, inventorydomain.ErrRecordNotFound) {
			return domain.CatalogLookupFailure(item.ProductID), nil
		}
		if err != nil {
			return nil, err
		}
		item.UnitPriceCents = rec.UnitPriceCents
		item.ProductName = rec.Name
	}

	computed := o.ComputedTotalCents()
	if o.TotalCents != 0 && o.TotalCents != computed {
		return domain.PriceMismatchFailure(o.TotalCents, computed), nil
	}
	o.TotalCents = computed
	return nil, nil
}
