// Package invoice формирует PDF-счета по заказу.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/blackbeesoft/erp/internal/domain"
)

const (
	pageMargin = 18.0

	colProduct  = 0.45
	colPrice    = 0.20
	colQuantity = 0.15
	colSubtotal = 0.20
)

// Renderer строит PDF-счёт по заказу. Реализует domain.InvoiceRenderer.
type Renderer struct {
	companyName  string
	addressLines []string
}

// NewRenderer создаёт рендерер с реквизитами компании по умолчанию.
func NewRenderer() *Renderer {
	return &Renderer{
		companyName: "BlackBee ERP",
		addressLines: []string{
			"123 Business Street",
			"Cape Town, South Africa",
			"info@blackbee-erp.com",
		},
	}
}

// RenderInvoice возвращает готовый PDF-документ счёта.
func (r *Renderer) RenderInvoice(order domain.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	availableWidth := pageWidth - 2*pageMargin

	// Шапка: реквизиты компании слева.
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(pageMargin, pageMargin)
	pdf.CellFormat(availableWidth/2, 9, r.companyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range r.addressLines {
		pdf.SetX(pageMargin)
		pdf.CellFormat(availableWidth/2, 5, line, "", 1, "L", false, 0, "")
	}

	// Шапка: атрибуты счёта справа.
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(pageMargin+availableWidth/2, pageMargin)
	pdf.CellFormat(availableWidth/2, 9, "INVOICE", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Invoice Number: %s", order.ID),
		fmt.Sprintf("Date: %s", order.OrderDate.Format("2006-01-02")),
		fmt.Sprintf("Status: %s", order.Status),
	} {
		pdf.SetX(pageMargin + availableWidth/2)
		pdf.CellFormat(availableWidth/2, 5, line, "", 1, "R", false, 0, "")
	}

	// Блок получателя.
	pdf.SetXY(pageMargin, pageMargin+40)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(availableWidth, 5, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range customerLines(order.Customer) {
		pdf.SetX(pageMargin)
		pdf.CellFormat(availableWidth, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// Таблица позиций.
	widths := []float64{
		availableWidth * colProduct,
		availableWidth * colPrice,
		availableWidth * colQuantity,
		availableWidth * colSubtotal,
	}
	headers := []string{"Product", "Unit Price", "Quantity", "Subtotal"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(204, 204, 204)
	pdf.SetX(pageMargin)
	for i, h := range headers {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		name := fmt.Sprintf("Product #%s", item.ProductID)
		if item.Product != nil {
			name = item.Product.Name
		}
		subtotal := int64(item.Qty) * item.UnitPriceMinor

		pdf.SetX(pageMargin)
		pdf.CellFormat(widths[0], 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, formatAmount(item.UnitPriceMinor), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, fmt.Sprintf("%d", item.Qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, formatAmount(subtotal), "1", 1, "R", false, 0, "")
	}

	// Итог.
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetX(pageMargin)
	pdf.CellFormat(availableWidth-widths[3], 6, "Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 6, formatAmount(order.AmountMinor), "", 1, "R", false, 0, "")

	// Подвал по центру страницы.
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(pageMargin, pageHeight-pageMargin-10)
	footer := fmt.Sprintf("Thank you for your business! Generated on %s",
		time.Now().Format("2006-01-02 15:04"))
	pdf.CellFormat(availableWidth, 5, footer, "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func customerLines(c *domain.Customer) []string {
	if c == nil {
		return []string{"Customer Name", "Email", "Phone", "Address"}
	}
	return []string{c.Name, c.Email, c.Phone, c.Address}
}

// formatAmount печатает сумму в рэндах из минимальных единиц.
func formatAmount(minor int64) string {
	return fmt.Sprintf("R %.2f", float64(minor)/100)
}

var _ domain.InvoiceRenderer = (*Renderer)(nil)
