package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций с заказами.
type OrderMetrics struct {
	// Счётчики исходов размещения заказов по результату
	placements *prometheus.CounterVec

	// Счётчики регистраций каталога
	clientsRegistered  prometheus.Counter
	productsRegistered prometheus.Counter

	// Гистограммы времени выполнения
	placementDuration prometheus.Histogram
	searchDuration    prometheus.Histogram
}

// Метки результата размещения заказа.
const (
	PlacementOK                = "ok"
	PlacementInvalid           = "invalid"
	PlacementClientNotFound    = "client_not_found"
	PlacementProductNotFound   = "product_not_found"
	PlacementInsufficientStock = "insufficient_stock"
	PlacementError             = "error"
)

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		placements: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_order_placements_total",
			Help: "Total number of order placement attempts by result",
		}, []string{"result"}),
		clientsRegistered: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_clients_registered_total",
			Help: "Total number of clients registered",
		}),
		productsRegistered: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_products_registered_total",
			Help: "Total number of products registered",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "sales_order_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		searchDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "sales_order_search_duration_seconds",
			Help:    "Duration of order search in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPlacement увеличивает счётчик попыток размещения с заданным результатом.
func (m *OrderMetrics) RecordPlacement(result string) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(result).Inc()
}

// RecordClientRegistered увеличивает счётчик зарегистрированных клиентов.
func (m *OrderMetrics) RecordClientRegistered() {
	if m == nil {
		return
	}
	m.clientsRegistered.Inc()
}

// RecordProductRegistered увеличивает счётчик зарегистрированных товаров.
func (m *OrderMetrics) RecordProductRegistered() {
	if m == nil {
		return
	}
	m.productsRegistered.Inc()
}

// RecordPlacementDuration записывает время размещения заказа.
func (m *OrderMetrics) RecordPlacementDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.placementDuration.Observe(duration.Seconds())
}

// RecordSearchDuration записывает время выполнения поиска.
func (m *OrderMetrics) RecordSearchDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.searchDuration.Observe(duration.Seconds())
}
