package domain

// LowStockThreshold — остаток, ниже которого товар считается заканчивающимся:
// он попадает в сводку "мало на складе" и порождает складское событие.
const LowStockThreshold = 10

// Product описывает товар на складе. StockQuantity — единственный
// счётчик остатка: он уменьшается при добавлении позиций заказа и
// восстанавливается при их удалении.
type Product struct {
	ID   string
	Name string
	// PriceMinor — актуальная цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// StockQuantity — текущий свободный остаток; не должен уходить в минус.
	StockQuantity int32
}

// Validate проверяет корректность полей товара.
func (p *Product) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if p.StockQuantity < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
