package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rcoelho/order-fulfillment-saga/internal/order/application"
	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

type fakeRepo struct {
	orders map[string]domain.Order
}

func (f *fakeRepo) Upsert(_ context.Context, o domain.Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

type fakePublisher struct {
	channels []string
}

func (f *fakePublisher) Publish(_ context.Context, channel string, _ domain.Order) error {
	f.channels = append(f.channels, channel)
	return nil
}

func newTestHandler() (http.Handler, *fakeRepo, *fakePublisher) {
	repo := &fakeRepo{orders: make(map[string]domain.Order)}
	pub := &fakePublisher{}
	svc := application.NewService(repo, pub)
	return NewHandler(slog.New(slog.DiscardHandler), svc).Routes(), repo, pub
}

func TestCreateOrderAccepted(t *testing.T) {
	h, repo, pub := newTestHandler()

	body := `{"customer":{"name":"Ana"},"items":[{"product_id":"P-1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["order_id"] == "" {
		t.Error("expected a generated order id")
	}
	if _, ok := repo.orders[resp["order_id"]]; !ok {
		t.Error("order was not persisted")
	}
	if len(pub.channels) != 1 {
		t.Errorf("expected one publish, got %v", pub.channels)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	h, _, pub := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(pub.channels) != 0 {
		t.Error("rejected order must not be published")
	}
}

func TestCreateOrderRejectsBadBody(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetOrder(t *testing.T) {
	h, repo, _ := newTestHandler()
	repo.orders["order-1"] = domain.NewOrder("order-1", nil, nil, []domain.LineItem{{ProductID: "P-1", Quantity: 1}})

	req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var o domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if o.ID != "order-1" || o.Status != domain.StatusCreated {
		t.Errorf("unexpected order in response: %+v", o)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
