package application

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	inventorydomain "github.com/rcoelho/order-fulfillment-saga/internal/inventory/domain"
	"github.com/rcoelho/order-fulfillment-saga/internal/messaging"
	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

type fakeCatalog struct {
	records map[string]inventorydomain.Record
	err     error
}

func (f *fakeCatalog) GetRecord(_ context.Context, productID string) (inventorydomain.Record, error) {
	if f.err != nil {
		return inventorydomain.Record{}, f.err
	}
	rec, ok := f.records[productID]
	if !ok {
		return inventorydomain.Record{}, inventorydomain.ErrRecordNotFound
	}
	return rec, nil
}

type published struct {
	channel string
	order   domain.Order
}

type fakePublisher struct {
	messages []published
}

func (f *fakePublisher) Publish(_ context.Context, channel string, o domain.Order) error {
	f.messages = append(f.messages, published{channel: channel, order: o})
	return nil
}

type fakeRepo struct {
	orders  map[string]domain.Order
	upserts int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]domain.Order)}
}

func (f *fakeRepo) Upsert(_ context.Context, o domain.Order) error {
	f.orders[o.ID] = o
	f.upserts++
	return nil
}

func testOrder(items ...domain.LineItem) domain.Order {
	return domain.NewOrder("order-1", nil, nil, items)
}

func newTestService(catalog *fakeCatalog) (*Service, *fakeRepo, *fakePublisher) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	svc := NewService(slog.New(slog.DiscardHandler), catalog, repo, pub)
	return svc, repo, pub
}

func twoProductCatalog() *fakeCatalog {
	return &fakeCatalog{records: map[string]inventorydomain.Record{
		"P-1": {ProductID: "P-1", Name: "Keyboard", UnitPriceCents: 2500, QuantityOnHand: 10},
		"P-2": {ProductID: "P-2", Name: "Mouse", UnitPriceCents: 1500, QuantityOnHand: 10},
	}}
}

func TestCollectPricesAndForwards(t *testing.T) {
	svc, repo, pub := newTestService(twoProductCatalog())
	o := testOrder(
		domain.LineItem{ProductID: "P-1", Quantity: 2},
		domain.LineItem{ProductID: "P-2", Quantity: 1},
	)

	got, err := svc.Collect(context.Background(), o)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if got.Status != domain.StatusCollected {
		t.Errorf("expected status %s, got %s", domain.StatusCollected, got.Status)
	}
	if got.TotalCents != 2*2500+1500 {
		t.Errorf("expected total 6500, got %d", got.TotalCents)
	}
	if got.Items[0].ProductName != "Keyboard" || got.Items[1].ProductName != "Mouse" {
		t.Errorf("expected catalog names on items, got %q and %q", got.Items[0].ProductName, got.Items[1].ProductName)
	}

	if len(pub.messages) != 1 || pub.messages[0].channel != messaging.ChannelReservation {
		t.Fatalf("expected one publish to %s, got %v", messaging.ChannelReservation, pub.messages)
	}
	if repo.upserts != 1 {
		t.Errorf("expected one upsert, got %d", repo.upserts)
	}
	if !reflect.DeepEqual(repo.orders["order-1"], got) {
		t.Error("persisted snapshot differs from returned order")
	}
}

func TestCollectCatalogMissCancels(t *testing.T) {
	svc, repo, pub := newTestService(twoProductCatalog())
	o := testOrder(
		domain.LineItem{ProductID: "P-1", Quantity: 1},
		domain.LineItem{ProductID: "X", Quantity: 1},
		domain.LineItem{ProductID: "P-2", Quantity: 1},
	)

	got, err := svc.Collect(context.Background(), o)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if !got.Canceled || got.Status != domain.StatusCanceled {
		t.Fatalf("expected canceled order, got status=%s canceled=%v", got.Status, got.Canceled)
	}
	if !strings.Contains(got.CancellationReason, "X") {
		t.Errorf("cancellation reason should name the missing product, got %q", got.CancellationReason)
	}
	// First error wins: the item after the miss stays unpriced.
	if got.Items[2].UnitPriceCents != 0 || got.Items[2].ProductName != "" {
		t.Errorf("item after the failing one should be untouched, got %+v", got.Items[2])
	}

	if len(pub.messages) != 1 || pub.messages[0].channel != messaging.ChannelFailure {
		t.Fatalf("expected one publish to %s, got %v", messaging.ChannelFailure, pub.messages)
	}
	if !repo.orders["order-1"].Canceled {
		t.Error("canceled order was not persisted")
	}
}

func TestCollectPriceMismatchCancels(t *testing.T) {
	svc, _, pub := newTestService(twoProductCatalog())
	o := testOrder(domain.LineItem{ProductID: "P-1", Quantity: 4}) // catalog total 10000
	o.TotalCents = 8000

	got, err := svc.Collect(context.Background(), o)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if !got.Canceled {
		t.Fatal("expected order canceled on price mismatch")
	}
	if !strings.Contains(got.CancellationReason, "8000") || !strings.Contains(got.CancellationReason, "10000") {
		t.Errorf("reason should name both totals, got %q", got.CancellationReason)
	}
	if pub.messages[0].channel != messaging.ChannelFailure {
		t.Errorf("expected failure channel, got %s", pub.messages[0].channel)
	}
}

func TestCollectMatchingPresetTotalPasses(t *testing.T) {
	svc, _, _ := newTestService(twoProductCatalog())
	o := testOrder(domain.LineItem{ProductID: "P-2", Quantity: 2})
	o.TotalCents = 3000

	got, err := svc.Collect(context.Background(), o)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got.Canceled || got.TotalCents != 3000 {
		t.Errorf("expected collected order with total 3000, got canceled=%v total=%d", got.Canceled, got.TotalCents)
	}
}

func TestCollectRedeliveryPersistsSameSnapshot(t *testing.T) {
	svc, repo, _ := newTestService(twoProductCatalog())
	o := testOrder(domain.LineItem{ProductID: "P-1", Quantity: 2})

	first, err := svc.Collect(context.Background(), o)
	if err != nil {
		t.Fatalf("first Collect: %v", err)
	}
	stored := repo.orders["order-1"]

	if _, err := svc.Collect(context.Background(), o); err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	if !reflect.DeepEqual(repo.orders["order-1"], stored) {
		t.Error("redelivery changed the stored snapshot")
	}
	if first.TotalCents != stored.TotalCents {
		t.Error("returned and stored totals disagree")
	}
}

func TestCollectInfraErrorPropagates(t *testing.T) {
	boom := errors.New("catalog down")
	svc, repo, pub := newTestService(&fakeCatalog{err: boom})
	o := testOrder(domain.LineItem{ProductID: "P-1", Quantity: 1})

	if _, err := svc.Collect(context.Background(), o); !errors.Is(err, boom) {
		t.Fatalf("expected infra error to propagate, got %v", err)
	}
	if len(pub.messages) != 0 || repo.upserts != 0 {
		t.Error("infra failure must not publish or persist")
	}
}
