package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetrics(t *testing.T) {
	metrics := NewOrderMetrics()

	if metrics == nil {
		t.Fatal("NewOrderMetrics should not return nil")
	}
	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if metrics.ordersUpdated == nil {
		t.Error("ordersUpdated counter should not be nil")
	}
	if metrics.ordersDeleted == nil {
		t.Error("ordersDeleted counter should not be nil")
	}
	if metrics.stockRejections == nil {
		t.Error("stockRejections counter should not be nil")
	}
	if metrics.opDuration == nil {
		t.Error("opDuration histogram vec should not be nil")
	}
	if metrics.historyEvents == nil {
		t.Error("historyEvents counter should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
}

func TestNewOrderMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(reg)
	second := newOrderMetricsWithRegisterer(reg)

	first.RecordCreated()
	second.RecordCreated()

	metric := &dto.Metric{}
	if err := first.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOperationCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newOrderMetricsWithRegisterer(reg)

	metrics.RecordCreated()
	metrics.RecordCreated()
	metrics.RecordUpdated()
	metrics.RecordDeleted()
	metrics.RecordStockRejection()
	metrics.RecordStockRejection()
	metrics.RecordStockRejection()

	checks := []struct {
		name    string
		counter prometheus.Counter
		want    float64
	}{
		{"created", metrics.ordersCreated, 2.0},
		{"updated", metrics.ordersUpdated, 1.0},
		{"deleted", metrics.ordersDeleted, 1.0},
		{"stock rejections", metrics.stockRejections, 3.0},
	}
	for _, check := range checks {
		metric := &dto.Metric{}
		if err := check.counter.Write(metric); err != nil {
			t.Fatalf("failed to write %s metric: %v", check.name, err)
		}
		if metric.Counter.GetValue() != check.want {
			t.Errorf("expected %s counter %f, got %f", check.name, check.want, metric.Counter.GetValue())
		}
	}
}

func TestRecordDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newOrderMetricsWithRegisterer(reg)

	metrics.RecordDuration("create", 100*time.Millisecond)
	metrics.RecordDuration("create", 500*time.Millisecond)
	metrics.RecordDuration("update", 50*time.Millisecond)

	metric := &dto.Metric{}
	observer := metrics.opDuration.WithLabelValues("create")
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples for create, got %d", metric.Histogram.GetSampleCount())
	}
	sum := metric.Histogram.GetSampleSum()
	if sum < 0.55 || sum > 0.65 {
		t.Errorf("expected sum around 0.6, got %f", sum)
	}
}

func TestRecordSideEffectCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newOrderMetricsWithRegisterer(reg)

	metrics.RecordHistoryEvent()
	metrics.RecordHistoryEvent()
	metrics.RecordOutboxEvent()

	metric := &dto.Metric{}
	if err := metrics.historyEvents.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 history events, got %f", metric.Counter.GetValue())
	}

	metric = &dto.Metric{}
	if err := metrics.outboxEvents.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 outbox event, got %f", metric.Counter.GetValue())
	}
}
