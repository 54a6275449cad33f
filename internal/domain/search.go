package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SearchFilter описывает необязательные условия поиска заказов.
// nil-поле означает "фильтр выключен": выключенный фильтр не исключает ни одной строки.
type SearchFilter struct {
	OrderID     *int64
	ClientID    *int64
	ClientName  *string
	ProductID   *int64
	ProductDesc *string
	From        *time.Time
	To          *time.Time
}

// WithClientTerm разбирает "умный" пользовательский терм по клиенту:
// строгое целое трактуется как точный id, всё остальное — как подстрока имени
// без учёта регистра. Пустой терм оставляет фильтр выключенным.
func (f SearchFilter) WithClientTerm(term string) SearchFilter {
	id, text := resolveTerm(term)
	f.ClientID = id
	f.ClientName = text
	return f
}

// WithProductTerm — то же разрешение для терма по товару (id либо подстрока описания).
func (f SearchFilter) WithProductTerm(term string) SearchFilter {
	id, text := resolveTerm(term)
	f.ProductID = id
	f.ProductDesc = text
	return f
}

// WithDateRange нормализует календарные границы: начало дня для from и
// 23:59:59 для to, чтобы один календарный день попадал в выборку целиком.
func (f SearchFilter) WithDateRange(from, to *time.Time) SearchFilter {
	if from != nil {
		start := StartOfDay(*from)
		f.From = &start
	}
	if to != nil {
		end := EndOfDay(*to)
		f.To = &end
	}
	return f
}

func resolveTerm(term string) (*int64, *string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		return &id, nil
	}
	return nil, &term
}

// StartOfDay возвращает 00:00:00 заданной календарной даты.
func StartOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// EndOfDay возвращает 23:59:59 заданной календарной даты.
func EndOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

// OrderSummary — строка отчёта: заказ с именем клиента и посчитанной суммой.
type OrderSummary struct {
	OrderID    int64
	ClientName string
	PlacedAt   time.Time
	// Total — сумма позиций заказа с учётом скидок, округлённая до двух знаков.
	// Заказ без позиций даёт 0, а не отсутствие значения.
	Total decimal.Decimal
}

// OrderReport агрегирует результат поиска и общий итог по нему.
type OrderReport struct {
	Orders []OrderSummary
	// GrandTotal — сумма итогов всех заказов выборки; пустая выборка даёт 0.
	GrandTotal decimal.Decimal
}

// NewOrderReport собирает отчёт, считая общий итог от явного нуля.
func NewOrderReport(orders []OrderSummary) OrderReport {
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(order.Total)
	}
	if orders == nil {
		orders = []OrderSummary{}
	}
	return OrderReport{Orders: orders, GrandTotal: total}
}
