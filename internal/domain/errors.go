package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка позиции без ссылки на товар.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена отрицательная.
	ErrItemPriceInvalid = errors.New("price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка отрицательного остатка товара.
	ErrStockNegative = errors.New("stock quantity must be non-negative")
	// Ошибка клиента без имени.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка клиента без email.
	ErrCustomerEmailRequired = errors.New("customer email is required")
	// Ошибка товара без названия.
	ErrProductNameRequired = errors.New("product name is required")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCustomerNotFound возвращается, если клиент не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("product not found")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// errValidation — общий маркер бизнес-ошибок валидации; используется
	// через errors.Is структурными ошибками ниже.
	errValidation = errors.New("validation failed")
)

// ProductNotFoundError уточняет, какой именно товар из позиции заказа отсутствует.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %s not found", e.ProductID)
}

// Is позволяет ловить ошибку и как ErrProductNotFound, и как ошибку валидации:
// с точки зрения вызывающего это отказ по бизнес-правилу на записи.
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound || target == errValidation
}

// InsufficientStockError сообщает о нехватке остатка с деталями для пользователя.
type InsufficientStockError struct {
	ProductID string
	// Available — остаток на момент проверки, Requested — запрошенное количество.
	Available int32
	Requested int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == errValidation
}

// IsNotFound проверяет, что ошибка означает отсутствие сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound)
}

// inputErrs — сентинели некорректного ввода; наравне со структурными
// ошибками выше считаются ошибками валидации.
var inputErrs = []error{
	ErrCustomerRequired,
	ErrItemsRequired,
	ErrItemProductRequired,
	ErrItemQtyInvalid,
	ErrItemPriceInvalid,
	ErrAmountMismatch,
	ErrStockNegative,
	ErrCustomerNameRequired,
	ErrCustomerEmailRequired,
	ErrProductNameRequired,
}

// IsValidation проверяет, что ошибка — нарушение бизнес-правила на записи:
// вызывающий должен исправить ввод, повтор без изменений бессмыслен.
func IsValidation(err error) bool {
	if errors.Is(err, errValidation) {
		return true
	}
	for _, target := range inputErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
