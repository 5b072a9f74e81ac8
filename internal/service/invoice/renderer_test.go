package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID:         "ord-1",
		CustomerID: "cust-1",
		Customer: &domain.Customer{
			ID:      "cust-1",
			Name:    "Acme Trading",
			Email:   "billing@acme.test",
			Phone:   "+27 21 555 0134",
			Address: "7 Harbour Road, Cape Town",
		},
		OrderDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Status:      domain.OrderStatusPending,
		AmountMinor: 45000,
		Items: []domain.OrderItem{
			{
				ID:             "item-1",
				OrderID:        "ord-1",
				ProductID:      "prod-1",
				Product:        &domain.Product{ID: "prod-1", Name: "Widget", PriceMinor: 15000},
				Qty:            3,
				UnitPriceMinor: 15000,
			},
		},
	}
}

func TestRenderInvoiceProducesPDF(t *testing.T) {
	data, err := NewRenderer().RenderInvoice(sampleOrder())
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty document")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF magic bytes, got %q", data[:4])
	}
}

func TestRenderInvoiceWithoutCustomer(t *testing.T) {
	order := sampleOrder()
	order.Customer = nil
	order.Items[0].Product = nil

	data, err := NewRenderer().RenderInvoice(order)
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("expected PDF magic bytes")
	}
}
