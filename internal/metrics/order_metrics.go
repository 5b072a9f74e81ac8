package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций жизненного цикла заказов.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated prometheus.Counter
	ordersUpdated prometheus.Counter
	ordersDeleted prometheus.Counter

	// Отказы по остатку на складе
	stockRejections prometheus.Counter

	// Гистограммы времени выполнения по типу операции
	opDuration *prometheus.HistogramVec

	// Счётчики побочных записей
	historyEvents prometheus.Counter
	outboxEvents  prometheus.Counter
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "erp_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "erp_orders_updated_total",
			Help: "Total number of orders updated (including status-only transitions)",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "erp_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		stockRejections: registerCounter(registerer, prometheus.CounterOpts{
			Name: "erp_orders_stock_rejections_total",
			Help: "Total number of order writes rejected for insufficient stock",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "erp_order_operation_duration_seconds",
			Help:    "Duration of order lifecycle operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		historyEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "erp_order_history_events_total",
			Help: "Total number of order history events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "erp_outbox_events_total",
			Help: "Total number of order events enqueued to the outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordCreated() {
	m.ordersCreated.Inc()
}

// RecordUpdated увеличивает счётчик обновлённых заказов.
func (m *OrderMetrics) RecordUpdated() {
	m.ordersUpdated.Inc()
}

// RecordDeleted увеличивает счётчик удалённых заказов.
func (m *OrderMetrics) RecordDeleted() {
	m.ordersDeleted.Inc()
}

// RecordStockRejection увеличивает счётчик отказов по остатку.
func (m *OrderMetrics) RecordStockRejection() {
	m.stockRejections.Inc()
}

// RecordDuration записывает время выполнения операции.
func (m *OrderMetrics) RecordDuration(operation string, duration time.Duration) {
	m.opDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHistoryEvent увеличивает счётчик записанных событий истории.
func (m *OrderMetrics) RecordHistoryEvent() {
	m.historyEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий, поставленных в outbox.
func (m *OrderMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
