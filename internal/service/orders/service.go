package orders

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
)

// Service реализует размещение и поиск заказов поверх репозиториев.
type Service struct {
	clients domain.ClientRepository
	orders  domain.OrderRepository
	metrics *metrics.OrderMetrics
	logger  *log.Entry
}

// NewService собирает сервис заказов. metrics может быть nil.
func NewService(clients domain.ClientRepository, orders domain.OrderRepository, m *metrics.OrderMetrics, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Service{
		clients: clients,
		orders:  orders,
		metrics: m,
		logger:  logger.WithField("component", "order_service"),
	}
}

// SearchQuery — параметры поиска заказов с верхней границы.
// Термы по клиенту и товару "умные": целое число трактуется как точный id,
// любая другая строка — как подстрока без учёта регистра; пустая строка
// выключает фильтр. Даты задают календарные дни включительно.
type SearchQuery struct {
	OrderID     *int64
	ClientTerm  string
	ProductTerm string
	From        *time.Time
	To          *time.Time
}

// Place размещает заказ: валидирует запрос, проверяет клиента и атомарно
// списывает остатки. Любая ошибка оставляет склад и заказы нетронутыми.
func (s *Service) Place(req domain.PlaceOrderRequest) (domain.Order, error) {
	started := time.Now()

	if errs := req.Validate(); len(errs) > 0 {
		s.metrics.RecordPlacement(metrics.PlacementInvalid)
		return domain.Order{}, errors.Join(errs...)
	}

	if _, err := s.clients.Get(req.ClientID); err != nil {
		s.metrics.RecordPlacement(metrics.PlacementClientNotFound)
		return domain.Order{}, fmt.Errorf("resolve client %d: %w", req.ClientID, err)
	}

	order, err := s.orders.Place(req.ClientID, req.Lines)
	if err != nil {
		s.metrics.RecordPlacement(placementResult(err))
		s.logger.WithError(err).WithField("client_id", req.ClientID).Warn("order placement failed")
		return domain.Order{}, fmt.Errorf("place order: %w", err)
	}

	s.metrics.RecordPlacement(metrics.PlacementOK)
	s.metrics.RecordPlacementDuration(time.Since(started))
	s.logger.WithFields(log.Fields{
		"order_id":  order.ID,
		"client_id": order.ClientID,
		"items":     len(order.Items),
		"total":     order.Total().StringFixed(2),
	}).Info("order placed")
	return order, nil
}

func placementResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return metrics.PlacementClientNotFound
	case errors.Is(err, domain.ErrProductNotFound):
		return metrics.PlacementProductNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.PlacementInsufficientStock
	default:
		return metrics.PlacementError
	}
}

// Search выполняет поиск заказов по комбинации фильтров и агрегирует итоги.
// Отсутствие всех фильтров возвращает полный отчёт.
func (s *Service) Search(query SearchQuery) (domain.OrderReport, error) {
	started := time.Now()

	filter := domain.SearchFilter{OrderID: query.OrderID}.
		WithClientTerm(query.ClientTerm).
		WithProductTerm(query.ProductTerm).
		WithDateRange(query.From, query.To)

	summaries, err := s.orders.Search(filter)
	if err != nil {
		s.logger.WithError(err).Warn("order search failed")
		return domain.OrderReport{}, fmt.Errorf("search orders: %w", err)
	}

	s.metrics.RecordSearchDuration(time.Since(started))
	return domain.NewOrderReport(summaries), nil
}

// ListAll возвращает отчёт по всем заказам без фильтров.
func (s *Service) ListAll() (domain.OrderReport, error) {
	return s.Search(SearchQuery{})
}

// Get возвращает заказ с позициями по идентификатору.
func (s *Service) Get(id int64) (domain.Order, error) {
	order, err := s.orders.Get(id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}
