package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem представляет одну позицию заказа.
//
// Связь с родительским заказом направленная: заказ владеет позициями, но
// позиция наружу родителя не отдаёт — OrderID используется только как
// внутренний ключ и не сериализуется транспортным слоем.
type OrderItem struct {
	// ID позиции выдаётся хранилищем.
	ID int64
	// OrderID — обратная ссылка на родительский заказ (только для хранилища).
	OrderID int64
	// ProductID — ссылка на товар каталога; несколько позиций могут указывать
	// на один и тот же товар.
	ProductID int64
	// UnitPrice — цена за единицу, зафиксированная в момент покупки.
	// После коммита заказа не меняется, даже если цена товара изменится.
	UnitPrice decimal.Decimal
	// Quantity — количество единиц товара (> 0).
	Quantity int32
	// DiscountPercent — процентная скидка позиции, 0..100; 0 при отсутствии.
	DiscountPercent int32
}

// Total возвращает стоимость позиции с учётом скидки.
func (i OrderItem) Total() decimal.Decimal {
	qty := decimal.NewFromInt(int64(i.Quantity))
	factor := decimal.NewFromInt(int64(100 - i.DiscountPercent))
	return i.UnitPrice.Mul(qty).Mul(factor).Div(decimal.NewFromInt(100))
}

// Order агрегирует заказ клиента и его позиции.
type Order struct {
	// ID выдаётся хранилищем.
	ID int64
	// ClientID назначается при создании и больше не меняется.
	ClientID int64
	// PlacedAt заполняется базой данных в момент фиксации.
	PlacedAt time.Time
	// Items — упорядоченный список позиций; позиции существуют только внутри заказа.
	Items []OrderItem
}

// Total возвращает сумму заказа: скидочные стоимости всех позиций,
// округлённые до двух знаков. Заказ без позиций стоит 0.
func (o *Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Total())
	}
	return sum.Round(2)
}

// OrderLine описывает одну запрошенную позицию при оформлении заказа.
type OrderLine struct {
	ProductID       int64
	Quantity        int32
	DiscountPercent int32
}

// PlaceOrderRequest — запрос на оформление заказа.
type PlaceOrderRequest struct {
	ClientID int64
	Lines    []OrderLine
}

// Validate проверяет инварианты запроса до обращения к хранилищу.
func (r *PlaceOrderRequest) Validate() []error {
	var errs []error

	if r.ClientID <= 0 {
		errs = append(errs, ErrClientRequired)
	}
	if len(r.Lines) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, line := range r.Lines {
		if line.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if line.DiscountPercent < 0 || line.DiscountPercent > 100 {
			errs = append(errs, ErrDiscountInvalid)
		}
	}

	return errs
}
