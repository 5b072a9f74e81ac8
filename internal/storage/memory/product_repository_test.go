package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/blackbeesoft/erp/internal/domain"
	"github.com/blackbeesoft/erp/internal/storage/memory"
)

func newProduct(id string, stock int32) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "Widget " + id,
		PriceMinor:    500,
		StockQuantity: stock,
	}
}

func TestProductRepository_CreateGetSave(t *testing.T) {
	repo := memory.NewProductRepository()
	product := newProduct("product-1", 10)

	if err := repo.Create(product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.StockQuantity != 10 {
		t.Fatalf("expected stock 10, got %d", stored.StockQuantity)
	}

	stored.PriceMinor = 700
	if err := repo.Save(stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	updated, err := repo.Get(product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.PriceMinor != 700 {
		t.Fatalf("expected price 700, got %d", updated.PriceMinor)
	}
}

func TestProductRepository_AdjustStock(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("product-1", 10)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.AdjustStock("product-1", -3); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	product, err := repo.Get("product-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if product.StockQuantity != 7 {
		t.Fatalf("expected stock 7, got %d", product.StockQuantity)
	}

	if err := repo.AdjustStock("product-1", 3); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	product, _ = repo.Get("product-1")
	if product.StockQuantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", product.StockQuantity)
	}
}

func TestProductRepository_AdjustStock_Floor(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("product-1", 2)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.AdjustStock("product-1", -5)
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 2 || insufficient.Requested != 5 {
		t.Fatalf("unexpected error details: %+v", insufficient)
	}

	product, _ := repo.Get("product-1")
	if product.StockQuantity != 2 {
		t.Fatalf("failed adjust must not change stock, got %d", product.StockQuantity)
	}
}

func TestProductRepository_AdjustStock_MissingProduct(t *testing.T) {
	repo := memory.NewProductRepository()

	err := repo.AdjustStock("missing", -1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_AdjustStock_Concurrent(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("product-1", 50)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 100 конкурентных списаний по 1 при остатке 50: ровно 50 должны пройти.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.AdjustStock("product-1", -1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 50 {
		t.Fatalf("expected exactly 50 successful decrements, got %d", succeeded)
	}
	product, _ := repo.Get("product-1")
	if product.StockQuantity != 0 {
		t.Fatalf("expected stock drained to 0, got %d", product.StockQuantity)
	}
}

func TestProductRepository_ListLowStock(t *testing.T) {
	repo := memory.NewProductRepository()
	for _, p := range []domain.Product{
		newProduct("product-1", 3),
		newProduct("product-2", 15),
		newProduct("product-3", 9),
	} {
		if err := repo.Create(p); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	low, err := repo.ListLowStock(10)
	if err != nil {
		t.Fatalf("list low stock failed: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low-stock products, got %d", len(low))
	}
	if low[0].ID != "product-1" || low[1].ID != "product-3" {
		t.Fatalf("expected lowest stock first, got %s, %s", low[0].ID, low[1].ID)
	}
}
