package app

import (
	"context"
	"testing"

	"github.com/blackbeesoft/erp/internal/domain"
)

func TestNewDependenciesInMemory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if deps.Store != nil {
		t.Error("expected no postgres store for in-memory backend")
	}
	if deps.Customers == nil || deps.Products == nil || deps.Orders == nil {
		t.Fatal("expected all repositories to be initialized")
	}
	if deps.History == nil || deps.Outbox == nil {
		t.Fatal("expected history and outbox repositories to be initialized")
	}

	// smoke: репозитории рабочие
	if err := deps.Products.Create(domain.Product{ID: "p1", Name: "Widget", PriceMinor: 100, StockQuantity: 5}); err != nil {
		t.Fatalf("product create: %v", err)
	}
	if _, err := deps.Products.Get("p1"); err != nil {
		t.Fatalf("product get: %v", err)
	}
}

func TestDependenciesCloseNilSafe(t *testing.T) {
	var deps *Dependencies
	deps.Close()

	deps = &Dependencies{}
	deps.Close()
}
