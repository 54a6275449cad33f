package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Place выполняет оформление заказа одной транзакцией: условное списание
// остатков, вставка заказа с позициями и outbox-запись order.placed.
// Списание идёт условным UPDATE (stock_qty >= qty), поэтому два конкурентных
// оформления одного товара сериализуются на строке и не дают оверсела.
func (r *orderRepository) Place(clientID int64, lines []domain.OrderLine) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var order domain.Order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (client_id)
		VALUES ($1)
		RETURNING id, placed_at
	`, clientID).Scan(&order.ID, &order.PlacedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			err = domain.ErrClientNotFound
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	order.ClientID = clientID
	order.Items = make([]domain.OrderItem, 0, len(lines))

	for _, line := range lines {
		var (
			description string
			unitPrice   decimal.Decimal
		)
		// Условное списание: строка обновляется только если остатка хватает.
		// RETURNING фиксирует цену в той же транзакции, что и списание.
		err = tx.QueryRowContext(ctx, `
			UPDATE products
			SET stock_qty = stock_qty - $2
			WHERE id = $1
			  AND stock_qty >= $2
			RETURNING description, unit_price
		`, line.ProductID, line.Quantity).Scan(&description, &unitPrice)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = r.classifyStockFailure(ctx, tx, line.ProductID)
				return domain.Order{}, err
			}
			return domain.Order{}, fmt.Errorf("decrement stock for product %d: %w", line.ProductID, err)
		}

		item := domain.OrderItem{
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			UnitPrice:       unitPrice,
			Quantity:        line.Quantity,
			DiscountPercent: line.DiscountPercent,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, unit_price, quantity, discount_percent)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, item.OrderID, item.ProductID, item.UnitPrice, item.Quantity, item.DiscountPercent).Scan(&item.ID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	msg, err := domain.NewOrderPlacedMessage(order)
	if err != nil {
		return domain.Order{}, err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload, status, attempt_count
		) VALUES ($1, $2, $3, $4, $5, 'pending', 0)
	`, uuid.NewString(), msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload); err != nil {
		return domain.Order{}, fmt.Errorf("enqueue order.placed outbox: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit place order: %w", err)
	}

	return order, nil
}

// classifyStockFailure различает "товара нет" и "остатка не хватило" внутри
// той же транзакции, что и несработавшее списание.
func (r *orderRepository) classifyStockFailure(ctx context.Context, tx *sql.Tx, productID int64) error {
	var description string
	err := tx.QueryRowContext(ctx, `
		SELECT description FROM products WHERE id = $1
	`, productID).Scan(&description)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return fmt.Errorf("inspect product %d: %w", productID, err)
	}
	return &domain.InsufficientStockError{ProductID: productID, Description: description}
}

func (r *orderRepository) Get(id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, placed_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.ClientID, &order.PlacedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

// Search собирает единый агрегирующий запрос: сумма позиций каждого подходящего
// заказа считается в базе, включённые фильтры добавляются в WHERE по одному.
func (r *orderRepository) Search(filter domain.SearchFilter) ([]domain.OrderSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	addCond := func(expr string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if filter.OrderID != nil {
		addCond("o.id = $%d", *filter.OrderID)
	}
	if filter.ClientID != nil {
		addCond("c.id = $%d", *filter.ClientID)
	}
	if filter.ClientName != nil {
		addCond("c.name ILIKE '%%' || $%d || '%%'", *filter.ClientName)
	}
	if filter.ProductID != nil {
		addCond("i.product_id = $%d", *filter.ProductID)
	}
	if filter.ProductDesc != nil {
		addCond("p.description ILIKE '%%' || $%d || '%%'", *filter.ProductDesc)
	}
	if filter.From != nil {
		addCond("o.placed_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCond("o.placed_at <= $%d", *filter.To)
	}

	query := `
		SELECT o.id, c.name, o.placed_at,
		       COALESCE(SUM(i.quantity * i.unit_price * (100 - COALESCE(i.discount_percent, 0)) / 100.0), 0) AS total
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		LEFT JOIN order_items i ON i.order_id = o.id
		LEFT JOIN products p ON p.id = i.product_id
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += `
		GROUP BY o.id, c.name, o.placed_at
		ORDER BY o.placed_at DESC, o.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.OrderSummary, 0)
	for rows.Next() {
		var summary domain.OrderSummary
		if err := rows.Scan(&summary.OrderID, &summary.ClientName, &summary.PlacedAt, &summary.Total); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		summary.Total = summary.Total.Round(2)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order summaries: %w", err)
	}

	return summaries, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, unit_price, quantity, discount_percent
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID,
			&item.UnitPrice, &item.Quantity, &item.DiscountPercent,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
