package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/blackbeesoft/erp/internal/domain"
	"github.com/blackbeesoft/erp/internal/messaging/kafka"
	"github.com/blackbeesoft/erp/internal/metrics"
)

// DefaultRecentLimit — количество заказов в сводке "последние заказы".
const DefaultRecentLimit = 5

// Service управляет жизненным циклом заказов и согласованностью складских
// остатков. Каждое добавление, изменение или удаление позиции заказа
// сопровождается обратной корректировкой остатка соответствующего товара.
//
// Списание остатка выполняется атомарным условным декрементом на уровне
// хранилища, поэтому конкурентные заказы не могут вдвоём пройти одну и ту же
// проверку остатка. Компенсации между шагами одной операции нет: ошибка
// хранилища посреди обновления отдаётся вызывающему как есть, частично
// восстановленные остатки не откатываются.
type Service struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	history   domain.HistoryRepository
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewService конструирует сервис с зависимостями.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	history domain.HistoryRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		history:   history,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewOrderMetrics(),
	}
}

// List возвращает все заказы с подгруженными клиентами и товарами позиций.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.resolve(&orders[i], true)
	}
	return orders, nil
}

// Get возвращает заказ с подгруженными связями или ErrOrderNotFound.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.orders.Get(id)
	if err != nil {
		return domain.Order{}, err
	}
	s.resolve(&order, true)
	return order, nil
}

// Create проводит заказ: проверяет товары и остатки по всем позициям до
// каких-либо записей, считает сумму по ценам из черновика (снимок цены на
// момент заказа), сохраняет шапку с позициями и списывает остатки.
func (s *Service) Create(ctx context.Context, draft domain.Order) (domain.Order, error) {
	start := time.Now()

	draft.NormalizeDate()
	if draft.OrderDate.IsZero() {
		draft.OrderDate = time.Now().UTC()
	}
	if draft.Status == "" {
		draft.Status = domain.OrderStatusPending
	}

	if draft.CustomerID == "" {
		return domain.Order{}, domain.ErrCustomerRequired
	}
	if _, err := s.customers.Get(draft.CustomerID); err != nil {
		return domain.Order{}, err
	}
	if err := s.validateItems(draft.Items, nil); err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  draft.CustomerID,
		OrderDate:   draft.OrderDate,
		Status:      draft.Status,
		AmountMinor: draft.ItemsTotalMinor(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	order.Items = make([]domain.OrderItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	for _, item := range order.Items {
		if err := s.deductStock(item); err != nil {
			return domain.Order{}, err
		}
	}

	s.metrics.RecordCreated()
	s.metrics.RecordDuration("create", time.Since(start))
	s.emitEvent(&order, domain.HistoryEventOrderCreated,
		fmt.Sprintf("%d item(s), total %d", len(order.Items), order.AmountMinor))
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"amount_minor": order.AmountMinor,
	}).Info("order created")

	// Свежезагруженный заказ с разрешёнными связями; если перезагрузка
	// неожиданно ничего не вернула, отдаём собранное значение — операция
	// уже успешна и не должна падать из-за промаха чтения после записи.
	reloaded, err := s.Get(ctx, order.ID)
	if err != nil {
		s.resolve(&order, true)
		return order, nil
	}
	return reloaded, nil
}

// Update применяет новое состояние заказа. Смена одного лишь статуса
// (тот же клиент, тот же мультисет товаров, то же число позиций) не трогает
// остатки вовсе; любое другое изменение проходит полный цикл: проверка
// новых позиций против доступности с учётом возврата старых, возврат
// остатков, замена позиций, обновление шапки и повторное списание.
// До успешной проверки склад не изменяется.
func (s *Service) Update(ctx context.Context, order domain.Order) error {
	start := time.Now()

	existing, err := s.orders.Get(order.ID)
	if err != nil {
		return err
	}

	order.NormalizeDate()
	if order.OrderDate.IsZero() {
		order.OrderDate = existing.OrderDate
	}

	statusOnly := len(existing.Items) == len(order.Items) &&
		order.CustomerID == existing.CustomerID &&
		order.Status != existing.Status &&
		domain.SameProductSet(order.Items, existing.Items)

	if statusOnly {
		header := existing
		header.Status = order.Status
		header.UpdatedAt = time.Now().UTC()
		if err := s.orders.SaveHeader(header); err != nil {
			return fmt.Errorf("save order status: %w", err)
		}

		s.metrics.RecordUpdated()
		s.metrics.RecordDuration("update", time.Since(start))
		s.emitEvent(&header, domain.HistoryEventStatusChanged,
			fmt.Sprintf("%s -> %s", existing.Status, order.Status))
		s.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"from":     existing.Status,
			"to":       order.Status,
		}).Info("order status changed")
		return nil
	}

	// Проверка новых позиций идёт до любых записей: доступность считается
	// как текущий остаток плюс количество, которое вернёт отмена старых
	// позиций. Отклонённое обновление не оставляет следов на складе.
	if err := s.validateItems(order.Items, restoredQuantities(existing.Items)); err != nil {
		return err
	}

	// Возврат остатков по текущим позициям. Исчезнувший товар пропускаем:
	// восстанавливать нечего.
	for _, item := range existing.Items {
		if err := s.restoreStock(item); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	items := make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	// Старые позиции удаляются до вставки новых, чтобы не ловить конфликты
	// уникальности; обе операции идут одной транзакцией хранилища.
	if err := s.orders.ReplaceItems(order.ID, items); err != nil {
		return fmt.Errorf("replace order items: %w", err)
	}

	header := domain.Order{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		OrderDate:   order.OrderDate,
		Status:      order.Status,
		AmountMinor: order.ItemsTotalMinor(),
		UpdatedAt:   now,
	}
	if err := s.orders.SaveHeader(header); err != nil {
		return fmt.Errorf("save order header: %w", err)
	}

	for _, item := range items {
		if err := s.deductStock(item); err != nil {
			return err
		}
	}

	s.metrics.RecordUpdated()
	s.metrics.RecordDuration("update", time.Since(start))
	s.emitEvent(&header, domain.HistoryEventOrderUpdated,
		fmt.Sprintf("%d item(s), total %d", len(items), header.AmountMinor))
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"amount_minor": header.AmountMinor,
	}).Info("order updated")
	return nil
}

// Delete удаляет заказ, возвращая зарезервированные остатки на склад.
// Операция идемпотентна: несуществующий заказ — успешный no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	start := time.Now()

	existing, err := s.orders.Get(id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	for _, item := range existing.Items {
		if err := s.restoreStock(item); err != nil {
			return err
		}
	}

	if err := s.orders.Delete(id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.metrics.RecordDeleted()
	s.metrics.RecordDuration("delete", time.Since(start))
	s.emitEvent(&existing, domain.HistoryEventOrderDeleted, "")
	s.logger.WithField("order_id", id).Info("order deleted")
	return nil
}

// ListRecent возвращает limit последних заказов по дате заказа,
// с клиентом, но без позиций.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	orders, err := s.orders.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.resolve(&orders[i], false)
	}
	return orders, nil
}

// TotalSales суммирует суммы заказов в инклюзивном диапазоне дат.
// nil-границы означают неограниченный диапазон с соответствующей стороны.
func (s *Service) TotalSales(ctx context.Context, from, to *time.Time) (int64, error) {
	if from != nil {
		f := from.UTC()
		from = &f
	}
	if to != nil {
		t := to.UTC()
		to = &t
	}
	return s.orders.TotalSales(from, to)
}

// History возвращает события жизненного цикла заказа в хронологическом порядке.
func (s *Service) History(ctx context.Context, orderID string) ([]domain.HistoryEvent, error) {
	return s.history.List(orderID)
}

// validateItems проверяет позиции и остатки по всем товарам до первой записи.
// restored задаёт количество по товарам, которое вернётся на склад при
// отмене старых позиций обновляемого заказа; при создании заказа он nil.
func (s *Service) validateItems(items []domain.OrderItem, restored map[string]int32) error {
	if len(items) == 0 {
		return domain.ErrItemsRequired
	}
	for _, item := range items {
		if item.ProductID == "" {
			return domain.ErrItemProductRequired
		}
		if item.Qty <= 0 {
			return domain.ErrItemQtyInvalid
		}
		if item.UnitPriceMinor < 0 {
			return domain.ErrItemPriceInvalid
		}
		product, err := s.products.Get(item.ProductID)
		if err != nil {
			if domain.IsNotFound(err) {
				return &domain.ProductNotFoundError{ProductID: item.ProductID}
			}
			return err
		}
		available := product.StockQuantity + restored[item.ProductID]
		if available < item.Qty {
			s.metrics.RecordStockRejection()
			return &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Available: available,
				Requested: item.Qty,
			}
		}
	}
	return nil
}

// restoredQuantities суммирует количество по товарам из позиций заказа.
func restoredQuantities(items []domain.OrderItem) map[string]int32 {
	restored := make(map[string]int32, len(items))
	for _, item := range items {
		restored[item.ProductID] += item.Qty
	}
	return restored
}

// deductStock списывает остаток под позицию атомарным условным декрементом.
func (s *Service) deductStock(item domain.OrderItem) error {
	if err := s.products.AdjustStock(item.ProductID, -item.Qty); err != nil {
		if domain.IsValidation(err) {
			s.metrics.RecordStockRejection()
		}
		return err
	}
	s.noteLowStock(item.ProductID, item.Qty)
	return nil
}

// noteLowStock ставит складское событие в outbox, когда списание опустило
// остаток ниже порога. Событие ставится один раз на пересечение порога:
// списание с уже низкого остатка не дублирует его.
func (s *Service) noteLowStock(productID string, deducted int32) {
	if s.outbox == nil {
		return
	}
	product, err := s.products.Get(productID)
	if err != nil {
		return
	}
	if product.StockQuantity >= domain.LowStockThreshold ||
		product.StockQuantity+deducted < domain.LowStockThreshold {
		return
	}

	payload, err := json.Marshal(kafka.NewStockLowEvent(
		product.ID, product.StockQuantity, domain.LowStockThreshold))
	if err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Error("marshal stock event failed")
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: kafka.AggregateProduct,
		AggregateID:   product.ID,
		EventType:     string(kafka.EventTypeStockLow),
		Payload:       payload,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"product_id": product.ID,
			"event":      string(kafka.EventTypeStockLow),
		}).Error("enqueue stock event failed")
		return
	}
	s.metrics.RecordOutboxEvent()
	s.logger.WithFields(log.Fields{
		"product_id":     product.ID,
		"stock_quantity": product.StockQuantity,
	}).Warn("остаток товара опустился ниже порога")
}

// restoreStock возвращает остаток позиции; удалённый товар не ошибка.
func (s *Service) restoreStock(item domain.OrderItem) error {
	err := s.products.AdjustStock(item.ProductID, item.Qty)
	if err != nil && domain.IsNotFound(err) {
		return nil
	}
	return err
}

// resolve подгружает клиента заказа и, при withProducts, товары позиций.
// Отсутствующие ссылки оставляют nil: чтение не падает из-за битой связи.
func (s *Service) resolve(order *domain.Order, withProducts bool) {
	if customer, err := s.customers.Get(order.CustomerID); err == nil {
		order.Customer = &customer
	}
	if !withProducts {
		return
	}
	for i := range order.Items {
		if product, err := s.products.Get(order.Items[i].ProductID); err == nil {
			p := product
			order.Items[i].Product = &p
		}
	}
}

// emitEvent пишет событие в историю заказа и ставит его в outbox.
// Ошибки побочных записей не роняют операцию: логируем и продолжаем.
func (s *Service) emitEvent(order *domain.Order, eventType, detail string) {
	occurred := time.Now().UTC()

	if s.history != nil {
		event := domain.HistoryEvent{
			OrderID:  order.ID,
			Type:     eventType,
			Detail:   detail,
			Occurred: occurred,
		}
		if err := s.history.Append(event); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"event":    eventType,
			}).Warn("append history event failed")
		} else {
			s.metrics.RecordHistoryEvent()
		}
	}

	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(kafka.NewOrderEvent(
		kafka.OrderEventType(eventType),
		order.ID, order.CustomerID, string(order.Status),
		map[string]interface{}{
			"amount_minor": order.AmountMinor,
			"detail":       detail,
		},
	))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("marshal event failed")
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       payload,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	} else {
		s.metrics.RecordOutboxEvent()
	}
}
