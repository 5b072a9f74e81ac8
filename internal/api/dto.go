package api

import (
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

type customerDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type productDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceMinor    int64  `json:"price_minor"`
	StockQuantity int32  `json:"stock_quantity"`
}

type orderItemDTO struct {
	ID             string      `json:"id,omitempty"`
	ProductID      string      `json:"product_id"`
	Product        *productDTO `json:"product,omitempty"`
	Quantity       int32       `json:"quantity"`
	UnitPriceMinor int64       `json:"unit_price_minor"`
}

type orderDTO struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customer_id"`
	Customer    *customerDTO   `json:"customer,omitempty"`
	OrderDate   time.Time      `json:"order_date"`
	Status      string         `json:"status"`
	AmountMinor int64          `json:"amount_minor"`
	Items       []orderItemDTO `json:"items,omitempty"`
}

type historyEventDTO struct {
	OrderID  string    `json:"order_id"`
	Type     string    `json:"type"`
	Detail   string    `json:"detail,omitempty"`
	Occurred time.Time `json:"occurred"`
}

type orderRequest struct {
	CustomerID string             `json:"customer_id"`
	OrderDate  time.Time          `json:"order_date"`
	Status     string             `json:"status"`
	Items      []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID      string `json:"product_id"`
	Quantity       int32  `json:"quantity"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

func toCustomerDTO(c domain.Customer) customerDTO {
	return customerDTO{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

func toProductDTO(p domain.Product) productDTO {
	return productDTO{ID: p.ID, Name: p.Name, PriceMinor: p.PriceMinor, StockQuantity: p.StockQuantity}
}

func toOrderDTO(order domain.Order) orderDTO {
	dto := orderDTO{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		OrderDate:   order.OrderDate,
		Status:      string(order.Status),
		AmountMinor: order.AmountMinor,
	}
	if order.Customer != nil {
		c := toCustomerDTO(*order.Customer)
		dto.Customer = &c
	}
	for _, item := range order.Items {
		itemDTO := orderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		}
		if item.Product != nil {
			p := toProductDTO(*item.Product)
			itemDTO.Product = &p
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	return dto
}

func toOrderDTOs(orders []domain.Order) []orderDTO {
	dtos := make([]orderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toOrderDTO(order))
	}
	return dtos
}

func (r orderRequest) toDomain(id string) domain.Order {
	order := domain.Order{
		ID:         id,
		CustomerID: r.CustomerID,
		OrderDate:  r.OrderDate,
		Status:     domain.OrderStatus(r.Status),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      item.ProductID,
			Qty:            item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}
	return order
}
