package memory

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// ProductRepository — in-memory реализация domain.ProductRepository.
type ProductRepository struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]domain.Product
}

// NewProductRepository возвращает пустой in-memory репозиторий товаров.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[int64]domain.Product)}
}

// Create сохраняет товар, выдавая следующий id и дату регистрации.
func (r *ProductRepository) Create(product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	product.ID = r.seq
	product.RegisteredAt = time.Now().UTC()
	r.items[product.ID] = product
	return product, nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *ProductRepository) Get(id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// FindByTerm ищет по точному id-как-тексту либо по подстроке описания.
func (r *ProductRepository) FindByTerm(term string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, parseErr := strconv.ParseInt(term, 10, 64)
	needle := strings.ToLower(term)

	result := make([]domain.Product, 0)
	for _, product := range r.items {
		if parseErr == nil && product.ID == id {
			result = append(result, product)
			continue
		}
		if strings.Contains(strings.ToLower(product.Description), needle) {
			result = append(result, product)
		}
	}
	sortProductsByID(result)
	return result, nil
}

// List возвращает все товары в порядке возрастания id.
func (r *ProductRepository) List() ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}
	sortProductsByID(result)
	return result, nil
}

// reserve проверяет и списывает остатки по всем позициям под одной
// блокировкой: либо применяются все списания, либо ни одно. Возвращает
// снимок товаров на момент списания для фиксации цены в позициях заказа.
func (r *ProductRepository) reserve(lines []domain.OrderLine) (map[int64]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := make(map[int64]int32, len(lines))
	snapshot := make(map[int64]domain.Product, len(lines))
	for _, line := range lines {
		product, ok := r.items[line.ProductID]
		if !ok {
			return nil, &domain.ProductNotFoundError{ProductID: line.ProductID}
		}
		if _, seen := remaining[line.ProductID]; !seen {
			remaining[line.ProductID] = product.StockQty
			snapshot[line.ProductID] = product
		}
		if remaining[line.ProductID] < line.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   line.ProductID,
				Description: product.Description,
			}
		}
		remaining[line.ProductID] -= line.Quantity
	}

	for id, left := range remaining {
		product := r.items[id]
		product.StockQty = left
		r.items[id] = product
	}
	return snapshot, nil
}

// release возвращает списанные остатки при откате размещения заказа.
func (r *ProductRepository) release(lines []domain.OrderLine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		product, ok := r.items[line.ProductID]
		if !ok {
			continue
		}
		product.StockQty += line.Quantity
		r.items[line.ProductID] = product
	}
}

func sortProductsByID(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
}

var _ domain.ProductRepository = (*ProductRepository)(nil)
