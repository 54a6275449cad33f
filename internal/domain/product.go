package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет позицию каталога со складским остатком.
type Product struct {
	// ID выдаётся хранилищем (BIGSERIAL).
	ID int64
	// Description — обязательное описание товара.
	Description string
	// UnitPrice — цена за единицу, фиксированная точка с двумя знаками.
	UnitPrice decimal.Decimal
	// StockQty — количество единиц, доступных к продаже. Никогда не уходит в минус.
	StockQty int32
	// RegisteredAt заполняется базой данных.
	RegisteredAt time.Time
}

// Validate проверяет инварианты товара перед регистрацией.
func (p *Product) Validate() []error {
	var errs []error

	if strings.TrimSpace(p.Description) == "" {
		errs = append(errs, ErrProductDescriptionRequired)
	}
	if p.UnitPrice.IsNegative() {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.StockQty < 0 {
		errs = append(errs, ErrProductStockNegative)
	}

	return errs
}
