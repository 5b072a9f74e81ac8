package domain

import "time"

// Известные типы событий истории заказа.
const (
	HistoryEventOrderCreated  = "OrderCreated"
	HistoryEventOrderUpdated  = "OrderUpdated"
	HistoryEventStatusChanged = "OrderStatusChanged"
	HistoryEventOrderDeleted  = "OrderDeleted"
)

// HistoryEvent описывает событие в жизненном цикле заказа:
// аудит-след для пользователя и поддержки.
type HistoryEvent struct {
	OrderID  string
	Type     string
	Detail   string
	Occurred time.Time
}
