package catalog

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
)

// Service реализует операции каталога: регистрацию и поиск клиентов и товаров.
type Service struct {
	clients  domain.ClientRepository
	products domain.ProductRepository
	metrics  *metrics.OrderMetrics
	logger   *log.Entry
}

// NewService собирает сервис каталога. metrics может быть nil.
func NewService(clients domain.ClientRepository, products domain.ProductRepository, m *metrics.OrderMetrics, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Service{
		clients:  clients,
		products: products,
		metrics:  m,
		logger:   logger.WithField("component", "catalog_service"),
	}
}

// RegisterClient проверяет и сохраняет нового клиента.
func (s *Service) RegisterClient(client domain.Client) (domain.Client, error) {
	if errs := client.Validate(); len(errs) > 0 {
		return domain.Client{}, errors.Join(errs...)
	}

	created, err := s.clients.Create(client)
	if err != nil {
		s.logger.WithError(err).WithField("email", client.Email).Warn("client registration failed")
		return domain.Client{}, fmt.Errorf("register client: %w", err)
	}

	s.metrics.RecordClientRegistered()
	s.logger.WithField("client_id", created.ID).Info("client registered")
	return created, nil
}

// ListClients возвращает всех зарегистрированных клиентов.
func (s *Service) ListClients() ([]domain.Client, error) {
	clients, err := s.clients.List()
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// FindClients ищет клиентов по идентификатору: точному id либо фрагменту имени.
// Пустой результат не ошибка, решение об этом принимает вызывающая сторона.
func (s *Service) FindClients(term string) ([]domain.Client, error) {
	clients, err := s.clients.FindByTerm(strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("find clients by %q: %w", term, err)
	}
	return clients, nil
}

// RegisterProduct проверяет и сохраняет новый товар.
func (s *Service) RegisterProduct(product domain.Product) (domain.Product, error) {
	if errs := product.Validate(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	created, err := s.products.Create(product)
	if err != nil {
		s.logger.WithError(err).Warn("product registration failed")
		return domain.Product{}, fmt.Errorf("register product: %w", err)
	}

	s.metrics.RecordProductRegistered()
	s.logger.WithFields(log.Fields{
		"product_id": created.ID,
		"stock_qty":  created.StockQty,
	}).Info("product registered")
	return created, nil
}

// ListProducts возвращает все товары каталога.
func (s *Service) ListProducts() ([]domain.Product, error) {
	products, err := s.products.List()
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// FindProducts ищет товары по идентификатору: точному id либо фрагменту описания.
func (s *Service) FindProducts(term string) ([]domain.Product, error) {
	products, err := s.products.FindByTerm(strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("find products by %q: %w", term, err)
	}
	return products, nil
}
