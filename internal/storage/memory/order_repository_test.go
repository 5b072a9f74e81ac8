package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
	"github.com/blackbeesoft/erp/internal/storage/memory"
)

func newOrder(id string, date time.Time) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:         id,
		CustomerID: "customer-1",
		OrderDate:  date,
		Status:     domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ID: id + "-item-1", OrderID: id, ProductID: "product-1", Qty: 2, UnitPriceMinor: 500},
		},
		AmountMinor: 1000,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID || len(stored.Items) != 1 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := memory.NewOrderRepository()

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListInsertionOrder(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()
	for _, id := range []string{"order-1", "order-2", "order-3"} {
		if err := repo.Create(newOrder(id, now)); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}

	orders, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	for i, id := range []string{"order-1", "order-2", "order-3"} {
		if orders[i].ID != id {
			t.Fatalf("expected %s at position %d, got %s", id, i, orders[i].ID)
		}
	}
}

func TestOrderRepository_SaveHeaderKeepsItems(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.Status = domain.OrderStatusShipped
	order.Items = nil // шапка обновляется независимо от позиций
	if err := repo.SaveHeader(order); err != nil {
		t.Fatalf("save header failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != domain.OrderStatusShipped {
		t.Fatalf("expected status update, got %s", stored.Status)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected items untouched, got %d", len(stored.Items))
	}
}

func TestOrderRepository_ReplaceItems(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	next := []domain.OrderItem{
		{ID: "item-a", ProductID: "product-2", Qty: 1, UnitPriceMinor: 300},
		{ID: "item-b", ProductID: "product-3", Qty: 4, UnitPriceMinor: 150},
	}
	if err := repo.ReplaceItems(order.ID, next); err != nil {
		t.Fatalf("replace items failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored.Items))
	}
	for _, item := range stored.Items {
		if item.OrderID != order.ID {
			t.Fatalf("expected items rebound to order, got %+v", item)
		}
	}
}

func TestOrderRepository_DeleteIdempotent(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Delete(order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.Delete(order.ID); err != nil {
		t.Fatalf("repeated delete must be a no-op, got %v", err)
	}
	if _, err := repo.Get(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order gone, got %v", err)
	}
}

func TestOrderRepository_ListRecent(t *testing.T) {
	repo := memory.NewOrderRepository()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"order-1", "order-2", "order-3"} {
		if err := repo.Create(newOrder(id, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}

	recent, err := repo.ListRecent(2)
	if err != nil {
		t.Fatalf("list recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(recent))
	}
	if recent[0].ID != "order-3" || recent[1].ID != "order-2" {
		t.Fatalf("expected newest first, got %s, %s", recent[0].ID, recent[1].ID)
	}
	if recent[0].Items != nil {
		t.Fatal("recent orders must not carry items")
	}
}

func TestOrderRepository_TotalSales(t *testing.T) {
	repo := memory.NewOrderRepository()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"order-1", "order-2", "order-3"} {
		if err := repo.Create(newOrder(id, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}

	total, err := repo.TotalSales(nil, nil)
	if err != nil {
		t.Fatalf("total sales failed: %v", err)
	}
	if total != 3000 {
		t.Fatalf("expected unbounded total 3000, got %d", total)
	}

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 2)
	total, err = repo.TotalSales(&from, &to)
	if err != nil {
		t.Fatalf("total sales failed: %v", err)
	}
	// Границы инклюзивные: order-2 и order-3 попадают в диапазон.
	if total != 2000 {
		t.Fatalf("expected bounded total 2000, got %d", total)
	}
}
