package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

func validOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		OrderDate:  now,
		Status:     domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: "product-1", Qty: 3, UnitPriceMinor: 500},
			{ID: "item-2", ProductID: "product-2", Qty: 1, UnitPriceMinor: 250},
		},
		AmountMinor: 1750,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestOrder_ItemsTotalMinor(t *testing.T) {
	order := validOrder()
	if got := order.ItemsTotalMinor(); got != 1750 {
		t.Fatalf("expected total 1750, got %d", got)
	}
}

func TestOrder_ValidateInvariants_OK(t *testing.T) {
	order := validOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrder_ValidateInvariants_Violations(t *testing.T) {
	order := validOrder()
	order.CustomerID = ""
	order.Items[0].Qty = 0
	order.AmountMinor = 1

	errs := order.ValidateInvariants()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}

	found := map[error]bool{}
	for _, err := range errs {
		found[err] = true
	}
	for _, want := range []error{domain.ErrCustomerRequired, domain.ErrItemQtyInvalid, domain.ErrAmountMismatch} {
		if !found[want] {
			t.Fatalf("expected error %v in %v", want, errs)
		}
	}
}

func TestOrder_ValidateInvariants_EmptyItems(t *testing.T) {
	order := validOrder()
	order.Items = nil
	order.AmountMinor = 0

	errs := order.ValidateInvariants()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrItemsRequired) {
		t.Fatalf("expected ErrItemsRequired, got %v", errs)
	}
}

func TestOrder_NormalizeDate(t *testing.T) {
	loc := time.FixedZone("SAST", 2*3600)
	order := validOrder()
	order.OrderDate = time.Date(2025, 3, 14, 10, 0, 0, 0, loc)

	order.NormalizeDate()

	if order.OrderDate.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", order.OrderDate.Location())
	}
	if order.OrderDate.Hour() != 8 {
		t.Fatalf("expected instant preserved (08:00 UTC), got %v", order.OrderDate)
	}
}

func TestSameProductSet(t *testing.T) {
	a := []domain.OrderItem{
		{ProductID: "p1", Qty: 2},
		{ProductID: "p2", Qty: 1},
	}

	same := []domain.OrderItem{
		{ProductID: "p2", Qty: 5},
		{ProductID: "p1", Qty: 9},
	}
	if !domain.SameProductSet(a, same) {
		t.Fatal("expected same product set regardless of quantities and order")
	}

	different := []domain.OrderItem{
		{ProductID: "p1", Qty: 2},
		{ProductID: "p3", Qty: 1},
	}
	if domain.SameProductSet(a, different) {
		t.Fatal("expected different product sets")
	}

	duplicated := []domain.OrderItem{
		{ProductID: "p1", Qty: 1},
		{ProductID: "p1", Qty: 1},
	}
	if domain.SameProductSet(a, duplicated) {
		t.Fatal("multiset comparison must respect duplicate product ids")
	}
}
