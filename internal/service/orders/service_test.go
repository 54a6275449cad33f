package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.ClientRepository, *memory.ProductRepository) {
	t.Helper()

	clients := memory.NewClientRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(clients, products, memory.NewOutboxRepository())
	return NewService(clients, orders, nil, nil), clients, products
}

func TestServicePlace(t *testing.T) {
	svc, clients, products := newTestService(t)

	client, err := clients.Create(domain.Client{Name: "Acme Ltd", Email: "acme@example.com"})
	require.NoError(t, err)
	product, err := products.Create(domain.Product{
		Description: "Steel bolt M6",
		UnitPrice:   decimal.RequireFromString("10.00"),
		StockQty:    5,
	})
	require.NoError(t, err)

	order, err := svc.Place(domain.PlaceOrderRequest{
		ClientID: client.ID,
		Lines: []domain.OrderLine{
			{ProductID: product.ID, Quantity: 3, DiscountPercent: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.True(t, order.Total().Equal(decimal.RequireFromString("27.00")),
		"total = %s", order.Total())

	left, err := products.Get(product.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, left.StockQty)
}

func TestServicePlaceValidation(t *testing.T) {
	svc, clients, _ := newTestService(t)

	client, err := clients.Create(domain.Client{Name: "Acme Ltd", Email: "acme@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  domain.PlaceOrderRequest
		want error
	}{
		{
			name: "no client",
			req:  domain.PlaceOrderRequest{Lines: []domain.OrderLine{{ProductID: 1, Quantity: 1}}},
			want: domain.ErrClientRequired,
		},
		{
			name: "no items",
			req:  domain.PlaceOrderRequest{ClientID: client.ID},
			want: domain.ErrItemsRequired,
		},
		{
			name: "zero quantity",
			req: domain.PlaceOrderRequest{
				ClientID: client.ID,
				Lines:    []domain.OrderLine{{ProductID: 1, Quantity: 0}},
			},
			want: domain.ErrItemQtyInvalid,
		},
		{
			name: "discount out of range",
			req: domain.PlaceOrderRequest{
				ClientID: client.ID,
				Lines:    []domain.OrderLine{{ProductID: 1, Quantity: 1, DiscountPercent: 101}},
			},
			want: domain.ErrDiscountInvalid,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Place(tc.req)
			require.ErrorIs(t, err, tc.want)
			require.True(t, domain.IsValidation(err))
		})
	}
}

func TestServicePlaceUnknownClient(t *testing.T) {
	svc, _, products := newTestService(t)

	product, err := products.Create(domain.Product{
		Description: "Steel bolt M6",
		UnitPrice:   decimal.RequireFromString("10.00"),
		StockQty:    5,
	})
	require.NoError(t, err)

	_, err = svc.Place(domain.PlaceOrderRequest{
		ClientID: 42,
		Lines:    []domain.OrderLine{{ProductID: product.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestServiceSearch(t *testing.T) {
	svc, clients, products := newTestService(t)

	acme, err := clients.Create(domain.Client{Name: "Acme Ltd", Email: "acme@example.com"})
	require.NoError(t, err)
	globex, err := clients.Create(domain.Client{Name: "Globex", Email: "globex@example.com"})
	require.NoError(t, err)
	bolt, err := products.Create(domain.Product{
		Description: "Steel bolt M6",
		UnitPrice:   decimal.RequireFromString("10.00"),
		StockQty:    100,
	})
	require.NoError(t, err)

	_, err = svc.Place(domain.PlaceOrderRequest{
		ClientID: acme.ID,
		Lines:    []domain.OrderLine{{ProductID: bolt.ID, Quantity: 3, DiscountPercent: 10}},
	})
	require.NoError(t, err)
	_, err = svc.Place(domain.PlaceOrderRequest{
		ClientID: globex.ID,
		Lines:    []domain.OrderLine{{ProductID: bolt.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("unfiltered report", func(t *testing.T) {
		report, err := svc.ListAll()
		require.NoError(t, err)
		require.Len(t, report.Orders, 2)
		require.True(t, report.GrandTotal.Equal(decimal.RequireFromString("37.00")),
			"grand total = %s", report.GrandTotal)
	})

	t.Run("client term as name fragment", func(t *testing.T) {
		report, err := svc.Search(SearchQuery{ClientTerm: "glob"})
		require.NoError(t, err)
		require.Len(t, report.Orders, 1)
		require.Equal(t, "Globex", report.Orders[0].ClientName)
	})

	t.Run("client term as id", func(t *testing.T) {
		report, err := svc.Search(SearchQuery{ClientTerm: "1"})
		require.NoError(t, err)
		require.Len(t, report.Orders, 1)
		require.Equal(t, "Acme Ltd", report.Orders[0].ClientName)
	})

	t.Run("date window covers the whole day", func(t *testing.T) {
		today := time.Now().UTC()
		report, err := svc.Search(SearchQuery{From: &today, To: &today})
		require.NoError(t, err)
		require.Len(t, report.Orders, 2)
	})

	t.Run("empty result keeps zero grand total", func(t *testing.T) {
		report, err := svc.Search(SearchQuery{ClientTerm: "initech"})
		require.NoError(t, err)
		require.Empty(t, report.Orders)
		require.True(t, report.GrandTotal.IsZero())
	})
}
