package domain

import "time"

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет нового клиента.
	Create(customer Customer) error
	// Get возвращает клиента по идентификатору или ErrCustomerNotFound.
	Get(id string) (Customer, error)
	// List возвращает всех клиентов.
	List() ([]Customer, error)
	// Save перезаписывает данные клиента.
	Save(customer Customer) error
	// Delete удаляет клиента; отсутствие записи не является ошибкой.
	Delete(id string) error
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар.
	Create(product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// List возвращает все товары.
	List() ([]Product, error)
	// Save перезаписывает данные товара.
	Save(product Product) error
	// Delete удаляет товар; отсутствие записи не является ошибкой.
	Delete(id string) error
	// AdjustStock атомарно меняет остаток на delta (может быть отрицательной).
	// Если итоговый остаток ушёл бы в минус, возвращает InsufficientStockError
	// и не меняет ничего: проверка и списание — одна операция.
	AdjustStock(id string, delta int32) error
	// ListLowStock возвращает товары с остатком строго ниже порога.
	ListLowStock(threshold int32) ([]Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
// Позиции заказа принадлежат заказу: репозиторий пишет и удаляет их
// только вместе с шапкой либо явной заменой всего набора.
type OrderRepository interface {
	// Create сохраняет шапку заказа вместе с позициями в одной транзакции.
	Create(order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает все заказы с позициями в порядке создания.
	List() ([]Order, error)
	// SaveHeader обновляет только шапку заказа (клиент, дата, статус, сумма).
	SaveHeader(order Order) error
	// ReplaceItems удаляет все текущие позиции заказа и записывает новые.
	// Старые позиции удаляются до вставки новых во избежание конфликтов.
	ReplaceItems(orderID string, items []OrderItem) error
	// Delete удаляет позиции и шапку заказа; отсутствие записи не ошибка.
	Delete(id string) error
	// ListRecent возвращает limit последних заказов по дате заказа, без позиций.
	ListRecent(limit int) ([]Order, error)
	// TotalSales суммирует AmountMinor заказов в инклюзивном диапазоне дат.
	// nil-границы означают отсутствие ограничения с соответствующей стороны.
	TotalSales(from, to *time.Time) (int64, error)
}

// HistoryRepository хранит события жизненного цикла заказа.
type HistoryRepository interface {
	Append(event HistoryEvent) error
	List(orderID string) ([]HistoryEvent, error)
}
