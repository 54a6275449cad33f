package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// OrderRepository — in-memory реализация domain.OrderRepository.
// Списание остатков координируется с репозиторием товаров: либо заказ
// размещается целиком, либо остатки не меняются вовсе.
type OrderRepository struct {
	mu      sync.RWMutex
	seq     int64
	itemSeq int64
	orders  map[int64]domain.Order

	clients  *ClientRepository
	products *ProductRepository
	outbox   domain.OutboxRepository
}

// NewOrderRepository собирает репозиторий заказов поверх репозиториев
// клиентов и товаров. outbox может быть nil — тогда события не пишутся.
func NewOrderRepository(clients *ClientRepository, products *ProductRepository, outbox domain.OutboxRepository) *OrderRepository {
	return &OrderRepository{
		orders:   make(map[int64]domain.Order),
		clients:  clients,
		products: products,
		outbox:   outbox,
	}
}

// Place размещает заказ: проверяет клиента, атомарно списывает остатки
// по всем позициям и сохраняет заказ с зафиксированными ценами.
func (r *OrderRepository) Place(clientID int64, lines []domain.OrderLine) (domain.Order, error) {
	if _, err := r.clients.Get(clientID); err != nil {
		return domain.Order{}, err
	}

	snapshot, err := r.products.reserve(lines)
	if err != nil {
		return domain.Order{}, err
	}

	r.mu.Lock()
	r.seq++
	order := domain.Order{
		ID:       r.seq,
		ClientID: clientID,
		PlacedAt: time.Now().UTC(),
		Items:    make([]domain.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		r.itemSeq++
		product := snapshot[line.ProductID]
		order.Items = append(order.Items, domain.OrderItem{
			ID:              r.itemSeq,
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			UnitPrice:       product.UnitPrice,
			Quantity:        line.Quantity,
			DiscountPercent: line.DiscountPercent,
		})
	}
	r.orders[order.ID] = order
	r.mu.Unlock()

	if r.outbox != nil {
		if err := r.enqueuePlaced(order); err != nil {
			r.mu.Lock()
			delete(r.orders, order.ID)
			r.mu.Unlock()
			r.products.release(lines)
			return domain.Order{}, err
		}
	}
	return order, nil
}

func (r *OrderRepository) enqueuePlaced(order domain.Order) error {
	msg, err := domain.NewOrderPlacedMessage(order)
	if err != nil {
		return err
	}
	if _, err := r.outbox.Enqueue(msg); err != nil {
		return err
	}
	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (r *OrderRepository) Get(id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// Search возвращает сводки по заказам, прошедшим фильтр, с суммой по
// каждому заказу. При фильтре по товару в сумму входят только позиции,
// удовлетворяющие этому фильтру.
func (r *OrderRepository) Search(filter domain.SearchFilter) ([]domain.OrderSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.OrderSummary, 0)
	for _, order := range r.orders {
		client, err := r.clients.Get(order.ClientID)
		if err != nil {
			return nil, err
		}
		summary, ok := r.matchOrder(order, client, filter)
		if !ok {
			continue
		}
		result = append(result, summary)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].PlacedAt.Equal(result[j].PlacedAt) {
			return result[i].PlacedAt.After(result[j].PlacedAt)
		}
		return result[i].OrderID > result[j].OrderID
	})
	return result, nil
}

func (r *OrderRepository) matchOrder(order domain.Order, client domain.Client, filter domain.SearchFilter) (domain.OrderSummary, bool) {
	if filter.OrderID != nil && order.ID != *filter.OrderID {
		return domain.OrderSummary{}, false
	}
	if filter.ClientID != nil && order.ClientID != *filter.ClientID {
		return domain.OrderSummary{}, false
	}
	if filter.ClientName != nil &&
		!strings.Contains(strings.ToLower(client.Name), strings.ToLower(*filter.ClientName)) {
		return domain.OrderSummary{}, false
	}
	if filter.From != nil && order.PlacedAt.Before(*filter.From) {
		return domain.OrderSummary{}, false
	}
	if filter.To != nil && order.PlacedAt.After(*filter.To) {
		return domain.OrderSummary{}, false
	}

	productFilter := filter.ProductID != nil || filter.ProductDesc != nil
	total := decimal.Zero
	matched := false
	for _, item := range order.Items {
		if productFilter && !r.matchItem(item, filter) {
			continue
		}
		matched = true
		total = total.Add(item.Total())
	}
	if productFilter && !matched {
		return domain.OrderSummary{}, false
	}

	return domain.OrderSummary{
		OrderID:    order.ID,
		ClientName: client.Name,
		PlacedAt:   order.PlacedAt,
		Total:      total.Round(2),
	}, true
}

func (r *OrderRepository) matchItem(item domain.OrderItem, filter domain.SearchFilter) bool {
	if filter.ProductID != nil && item.ProductID != *filter.ProductID {
		return false
	}
	if filter.ProductDesc != nil {
		product, err := r.products.Get(item.ProductID)
		if err != nil {
			return false
		}
		if !strings.Contains(strings.ToLower(product.Description), strings.ToLower(*filter.ProductDesc)) {
			return false
		}
	}
	return true
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
