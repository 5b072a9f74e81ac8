package memory

import (
	"sort"
	"sync"

	"github.com/blackbeesoft/erp/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает все товары, отсортированные по названию.
func (r *productRepositoryInMemory) List() ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Save перезаписывает данные товара.
func (r *productRepositoryInMemory) Save(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.items[product.ID] = product
	return nil
}

// Delete удаляет товар; отсутствие записи не считается ошибкой.
func (r *productRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

// AdjustStock атомарно меняет остаток под мьютексом: проверка нижней
// границы и запись — одна критическая секция, гонка check-then-act
// между конкурентными заказами исключена.
func (r *productRepositoryInMemory) AdjustStock(id string, delta int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	next := product.StockQuantity + delta
	if next < 0 {
		return &domain.InsufficientStockError{
			ProductID: id,
			Available: product.StockQuantity,
			Requested: -delta,
		}
	}
	product.StockQuantity = next
	r.items[id] = product
	return nil
}

// ListLowStock возвращает товары с остатком строго ниже порога.
func (r *productRepositoryInMemory) ListLowStock(threshold int32) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0)
	for _, product := range r.items {
		if product.StockQuantity < threshold {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StockQuantity != result[j].StockQuantity {
			return result[i].StockQuantity < result[j].StockQuantity
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
