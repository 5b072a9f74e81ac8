package domain

import "time"

// OrderStatus описывает этап жизненного цикла заказа.
// Статус — свободная строка: неизвестные значения не отклоняются,
// константы ниже покрывают известные этапы workflow.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает обработки.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusProcessing — заказ взят в работу.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusShipped — заказ отгружен со склада.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered — заказ доставлен клиенту.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderItem представляет одну позицию заказа. Позиция живёт только
// вместе с родительским заказом: создаётся, заменяется и удаляется
// исключительно в рамках мутации Order.
type OrderItem struct {
	ID      string
	OrderID string
	// ProductID ссылается на товар; сам Product подгружается при чтении.
	ProductID string
	Product   *Product
	// Qty — количество единиц товара, строго положительное.
	Qty int32
	// UnitPriceMinor — цена за единицу на момент оформления заказа,
	// в минимальных денежных единицах. Снимок, не перечитывается из товара.
	UnitPriceMinor int64
}

// Order агрегирует шапку заказа и его позиции.
type Order struct {
	ID         string
	CustomerID string
	Customer   *Customer
	// OrderDate всегда хранится в UTC; см. NormalizeDate.
	OrderDate time.Time
	Status    OrderStatus
	// AmountMinor — производная сумма заказа: sum(Qty * UnitPriceMinor).
	AmountMinor int64
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemsTotalMinor считает сумму заказа по позициям.
func (o *Order) ItemsTotalMinor() int64 {
	var total int64
	for _, item := range o.Items {
		total += int64(item.Qty) * item.UnitPriceMinor
	}
	return total
}

// NormalizeDate приводит дату заказа к UTC, убирая неоднозначность
// локальных таймзон на входе.
func (o *Order) NormalizeDate() {
	if !o.OrderDate.IsZero() {
		o.OrderDate = o.OrderDate.UTC()
	}
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	if o.AmountMinor != o.ItemsTotalMinor() {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// SameProductSet сравнивает мультимножества product id двух наборов позиций.
// Количества не учитываются: важно только, какие товары задействованы.
func SameProductSet(a, b []OrderItem) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, item := range a {
		counts[item.ProductID]++
	}
	for _, item := range b {
		counts[item.ProductID]--
		if counts[item.ProductID] < 0 {
			return false
		}
	}
	return true
}
