package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего имени клиента.
	ErrClientNameRequired = errors.New("client name is required")
	// Ошибка отсутствующего email клиента.
	ErrClientEmailRequired = errors.New("client email is required")
	// Ошибка отсутствующего описания товара.
	ErrProductDescriptionRequired = errors.New("product description is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceNegative = errors.New("product unit price must be non-negative")
	// Ошибка отрицательного остатка на складе.
	ErrProductStockNegative = errors.New("product stock quantity must be non-negative")
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrClientRequired = errors.New("client_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка при скидке вне диапазона 0..100.
	ErrDiscountInvalid = errors.New("item discount must be between 0 and 100 percent")
	// ErrClientNotFound возвращается, если клиент не найден в хранилище.
	ErrClientNotFound = errors.New("client not found")
	// ErrProductNotFound возвращается, если товар не найден в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInsufficientStock — бизнес-ошибка нехватки остатка при оформлении заказа.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmailTaken сигнализирует о нарушении уникальности email клиента.
	ErrEmailTaken = errors.New("client email is already registered")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ProductNotFoundError уточняет, какой именно товар из запроса не найден.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id %d", e.ProductID)
}

// Unwrap позволяет errors.Is(err, ErrProductNotFound).
func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// InsufficientStockError несёт идентификатор и описание товара, которого не хватило.
type InsufficientStockError struct {
	ProductID   int64
	Description string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id %d)", e.Description, e.ProductID)
}

// Unwrap позволяет errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsValidation проверяет, относится ли ошибка к нарушению входных данных запроса.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrClientNameRequired,
		ErrClientEmailRequired,
		ErrProductDescriptionRequired,
		ErrProductPriceNegative,
		ErrProductStockNegative,
		ErrClientRequired,
		ErrItemsRequired,
		ErrItemQtyInvalid,
		ErrDiscountInvalid,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsNotFound проверяет, является ли ошибка отсутствием сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
