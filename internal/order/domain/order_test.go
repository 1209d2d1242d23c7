package domain

import (
	"testing"
)

func TestNewOrderDefaults(t *testing.T) {
	o := NewOrder("order-1", nil, nil, []LineItem{{ProductID: "P-1", Quantity: 2}})

	if o.Status != StatusCreated {
		t.Errorf("expected status %s, got %s", StatusCreated, o.Status)
	}
	if o.Canceled || o.CancellationReason != "" {
		t.Error("new order must not be canceled")
	}
	if o.TotalCents != 0 {
		t.Errorf("total must start unset, got %d", o.TotalCents)
	}
	if o.CreatedAt.IsZero() {
		t.Error("creation time not set")
	}
}

func TestComputedTotalCents(t *testing.T) {
	o := NewOrder("order-1", nil, nil, []LineItem{
		{ProductID: "P-1", Quantity: 3, UnitPriceCents: 1000},
		{ProductID: "P-2", Quantity: 2, UnitPriceCents: 250},
	})
	if got := o.ComputedTotalCents(); got != 3500 {
		t.Errorf("expected 3500, got %d", got)
	}
}

func TestCancelIsAbsorbing(t *testing.T) {
	o := NewOrder("order-1", nil, nil, nil)

	o.Cancel("first reason")
	if !o.Canceled || o.Status != StatusCanceled {
		t.Fatalf("expected canceled order, got status=%s canceled=%v", o.Status, o.Canceled)
	}

	o.Cancel("second reason")
	if o.CancellationReason != "first reason" {
		t.Errorf("cancellation reason overwritten: %q", o.CancellationReason)
	}

	if !o.Terminal() {
		t.Error("canceled order must be terminal")
	}
}

func TestTerminal(t *testing.T) {
	o := NewOrder("order-1", nil, nil, nil)
	if o.Terminal() {
		t.Error("created order must not be terminal")
	}
	o.Status = StatusCollected
	if o.Terminal() {
		t.Error("collected order must not be terminal")
	}
	o.Status = StatusReserved
	if !o.Terminal() {
		t.Error("reserved order must be terminal")
	}
}
