package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

// orderRecord хранит заказ вместе с порядковым номером вставки,
// чтобы List возвращал заказы в порядке создания.
type orderRecord struct {
	order domain.Order
	seq   int64
}

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[string]orderRecord
	nextSeq int64
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]orderRecord),
	}
}

// Create сохраняет шапку заказа вместе с позициями.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	r.nextSeq++
	r.items[order.ID] = orderRecord{order: cloneOrder(order), seq: r.nextSeq}
	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(record.order), nil
}

// List возвращает все заказы в порядке создания.
func (r *orderRepositoryInMemory) List() ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]orderRecord, 0, len(r.items))
	for _, record := range r.items {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].seq < records[j].seq
	})

	result := make([]domain.Order, 0, len(records))
	for _, record := range records {
		result = append(result, cloneOrder(record.order))
	}
	return result, nil
}

// SaveHeader обновляет только шапку заказа, не трогая позиции.
func (r *orderRepositoryInMemory) SaveHeader(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	record.order.CustomerID = order.CustomerID
	record.order.OrderDate = order.OrderDate
	record.order.Status = order.Status
	record.order.AmountMinor = order.AmountMinor
	record.order.UpdatedAt = order.UpdatedAt
	r.items[order.ID] = record
	return nil
}

// ReplaceItems заменяет весь набор позиций заказа.
func (r *orderRepositoryInMemory) ReplaceItems(orderID string, items []domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.items[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	copied := make([]domain.OrderItem, len(items))
	copy(copied, items)
	for i := range copied {
		copied[i].OrderID = orderID
	}
	record.order.Items = copied
	r.items[orderID] = record
	return nil
}

// Delete удаляет заказ вместе с позициями; отсутствие записи не ошибка.
func (r *orderRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

// ListRecent возвращает limit последних заказов по дате заказа, без позиций.
func (r *orderRepositoryInMemory) ListRecent(limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]orderRecord, 0, len(r.items))
	for _, record := range r.items {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].order.OrderDate.Equal(records[j].order.OrderDate) {
			return records[i].order.OrderDate.After(records[j].order.OrderDate)
		}
		return records[i].seq > records[j].seq
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	result := make([]domain.Order, 0, len(records))
	for _, record := range records {
		order := cloneOrder(record.order)
		order.Items = nil
		result = append(result, order)
	}
	return result, nil
}

// TotalSales суммирует AmountMinor по инклюзивному диапазону дат заказа.
func (r *orderRepositoryInMemory) TotalSales(from, to *time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, record := range r.items {
		date := record.order.OrderDate
		if from != nil && date.Before(*from) {
			continue
		}
		if to != nil && date.After(*to) {
			continue
		}
		total += record.order.AmountMinor
	}
	return total, nil
}

// cloneOrder копирует заказ вместе со слайсом позиций,
// чтобы избежать непредсказуемых мутаций извне.
func cloneOrder(order domain.Order) domain.Order {
	copied := order
	if order.Items != nil {
		copied.Items = make([]domain.OrderItem, len(order.Items))
		copy(copied.Items, order.Items)
	}
	return copied
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
