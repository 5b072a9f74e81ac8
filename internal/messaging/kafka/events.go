package kafka

import (
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

// EventType определяет тип события во внешнем контракте.
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderUpdated       EventType = "order.updated"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderDeleted       EventType = "order.deleted"

	// Inventory события
	EventTypeStockLow EventType = "stock.low"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "erp.order.events"
	TopicInventoryEvents = "erp.inventory.events"
)

// AggregateProduct помечает outbox-записи складских событий;
// остальные агрегаты идут в топик заказов.
const AggregateProduct = "product"

// OrderEventType переводит тип события истории заказа во внешний тип.
func OrderEventType(historyType string) EventType {
	switch historyType {
	case domain.HistoryEventOrderCreated:
		return EventTypeOrderCreated
	case domain.HistoryEventStatusChanged:
		return EventTypeOrderStatusChanged
	case domain.HistoryEventOrderDeleted:
		return EventTypeOrderDeleted
	default:
		return EventTypeOrderUpdated
	}
}

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, customerID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}

// StockLowEvent сообщает, что списание опустило остаток товара ниже порога.
type StockLowEvent struct {
	EventType     EventType `json:"event_type"`
	ProductID     string    `json:"product_id"`
	StockQuantity int32     `json:"stock_quantity"`
	Threshold     int32     `json:"threshold"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewStockLowEvent создает событие низкого остатка.
func NewStockLowEvent(productID string, stockQuantity, threshold int32) *StockLowEvent {
	return &StockLowEvent{
		EventType:     EventTypeStockLow,
		ProductID:     productID,
		StockQuantity: stockQuantity,
		Threshold:     threshold,
		Timestamp:     time.Now(),
	}
}
