package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

type testFixture struct {
	clients  *ClientRepository
	products *ProductRepository
	orders   *OrderRepository
	outbox   *OutboxRepository
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		clients:  NewClientRepository(),
		products: NewProductRepository(),
		outbox:   NewOutboxRepository(),
	}
	f.orders = NewOrderRepository(f.clients, f.products, f.outbox)
	return f
}

func (f *testFixture) addClient(t *testing.T, name, email string) domain.Client {
	t.Helper()

	client, err := f.clients.Create(domain.Client{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create client %q: %v", name, err)
	}
	return client
}

func (f *testFixture) addProduct(t *testing.T, desc, price string, stock int32) domain.Product {
	t.Helper()

	product, err := f.products.Create(domain.Product{
		Description: desc,
		UnitPrice:   decimal.RequireFromString(price),
		StockQty:    stock,
	})
	if err != nil {
		t.Fatalf("create product %q: %v", desc, err)
	}
	return product
}

func (f *testFixture) stockOf(t *testing.T, productID int64) int32 {
	t.Helper()

	product, err := f.products.Get(productID)
	if err != nil {
		t.Fatalf("get product %d: %v", productID, err)
	}
	return product.StockQty
}

func TestOrderRepositoryPlace(t *testing.T) {
	f := newTestFixture(t)
	client := f.addClient(t, "Acme Ltd", "acme@example.com")
	product := f.addProduct(t, "Steel bolt M6", "10.00", 5)

	order, err := f.orders.Place(client.ID, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 3, DiscountPercent: 10},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if got := f.stockOf(t, product.ID); got != 2 {
		t.Errorf("stock after placement = %d, want 2", got)
	}
	if len(order.Items) != 1 {
		t.Fatalf("order has %d items, want 1", len(order.Items))
	}
	if !order.Items[0].UnitPrice.Equal(product.UnitPrice) {
		t.Errorf("item price = %s, want snapshot %s", order.Items[0].UnitPrice, product.UnitPrice)
	}
	// 3 * 10.00 с учётом скидки 10% = 27.00.
	if want := decimal.RequireFromString("27.00"); !order.Total().Equal(want) {
		t.Errorf("order total = %s, want %s", order.Total(), want)
	}

	pending := f.outbox.AllPending()
	if len(pending) != 1 {
		t.Fatalf("outbox has %d pending messages, want 1", len(pending))
	}
	if pending[0].EventType != domain.EventOrderPlaced {
		t.Errorf("event type = %q, want %q", pending[0].EventType, domain.EventOrderPlaced)
	}
}

func TestOrderRepositoryPlaceInsufficientStock(t *testing.T) {
	f := newTestFixture(t)
	client := f.addClient(t, "Acme Ltd", "acme@example.com")
	product := f.addProduct(t, "Steel bolt M6", "10.00", 5)

	if _, err := f.orders.Place(client.ID, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 3},
	}); err != nil {
		t.Fatalf("first placement: %v", err)
	}

	_, err := f.orders.Place(client.ID, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 3},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("second placement error = %v, want ErrInsufficientStock", err)
	}

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("error %v does not carry product details", err)
	}
	if stockErr.ProductID != product.ID {
		t.Errorf("failed product = %d, want %d", stockErr.ProductID, product.ID)
	}

	if got := f.stockOf(t, product.ID); got != 2 {
		t.Errorf("stock after rejected placement = %d, want 2", got)
	}
	if pending := f.outbox.AllPending(); len(pending) != 1 {
		t.Errorf("outbox has %d pending messages, want 1", len(pending))
	}
}

func TestOrderRepositoryPlaceAllOrNothing(t *testing.T) {
	f := newTestFixture(t)
	client := f.addClient(t, "Acme Ltd", "acme@example.com")
	bolt := f.addProduct(t, "Steel bolt M6", "10.00", 10)
	nut := f.addProduct(t, "Steel nut M6", "5.00", 1)

	_, err := f.orders.Place(client.ID, []domain.OrderLine{
		{ProductID: bolt.ID, Quantity: 4},
		{ProductID: nut.ID, Quantity: 2},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("placement error = %v, want ErrInsufficientStock", err)
	}

	if got := f.stockOf(t, bolt.ID); got != 10 {
		t.Errorf("bolt stock = %d, want untouched 10", got)
	}
	if got := f.stockOf(t, nut.ID); got != 1 {
		t.Errorf("nut stock = %d, want untouched 1", got)
	}
}

func TestOrderRepositoryPlaceDuplicateLines(t *testing.T) {
	f := newTestFixture(t)
	client := f.addClient(t, "Acme Ltd", "acme@example.com")
	product := f.addProduct(t, "Steel bolt M6", "10.00", 5)

	// Две позиции одного товара списываются суммарно: 3 + 3 > 5.
	_, err := f.orders.Place(client.ID, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 3},
		{ProductID: product.ID, Quantity: 3},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("placement error = %v, want ErrInsufficientStock", err)
	}
	if got := f.stockOf(t, product.ID); got != 5 {
		t.Errorf("stock = %d, want untouched 5", got)
	}
}

func TestOrderRepositoryPlaceUnknownRefs(t *testing.T) {
	f := newTestFixture(t)
	client := f.addClient(t, "Acme Ltd", "acme@example.com")
	product := f.addProduct(t, "Steel bolt M6", "10.00", 5)

	if _, err := f.orders.Place(999, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 1},
	}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("unknown client error = %v, want ErrClientNotFound", err)
	}

	_, err := f.orders.Place(client.ID, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("unknown product error = %v, want ErrProductNotFound", err)
	}
	if got := f.stockOf(t, product.ID); got != 5 {
		t.Errorf("stock = %d, want untouched 5", got)
	}
}

func TestOrderRepositorySearch(t *testing.T) {
	f := newTestFixture(t)
	acme := f.addClient(t, "Acme Ltd", "acme@example.com")
	globex := f.addClient(t, "Globex", "globex@example.com")
	bolt := f.addProduct(t, "Steel bolt M6", "10.00", 100)
	paint := f.addProduct(t, "Red paint 1L", "25.50", 100)

	first, err := f.orders.Place(acme.ID, []domain.OrderLine{
		{ProductID: bolt.ID, Quantity: 3, DiscountPercent: 10},
		{ProductID: paint.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("place first order: %v", err)
	}
	second, err := f.orders.Place(globex.ID, []domain.OrderLine{
		{ProductID: bolt.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("place second order: %v", err)
	}

	t.Run("no filters returns everything", func(t *testing.T) {
		summaries, err := f.orders.Search(domain.SearchFilter{})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("got %d summaries, want 2", len(summaries))
		}

		report := domain.NewOrderReport(summaries)
		// 27.00 + 51.00 + 10.00.
		if want := decimal.RequireFromString("88.00"); !report.GrandTotal.Equal(want) {
			t.Errorf("grand total = %s, want %s", report.GrandTotal, want)
		}
	})

	t.Run("client term", func(t *testing.T) {
		summaries, err := f.orders.Search(domain.SearchFilter{}.WithClientTerm("acme"))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 1 || summaries[0].OrderID != first.ID {
			t.Fatalf("summaries = %+v, want only order %d", summaries, first.ID)
		}
		if summaries[0].ClientName != "Acme Ltd" {
			t.Errorf("client name = %q, want %q", summaries[0].ClientName, "Acme Ltd")
		}
	})

	t.Run("product filter narrows order total", func(t *testing.T) {
		summaries, err := f.orders.Search(domain.SearchFilter{}.WithProductTerm("paint"))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 1 || summaries[0].OrderID != first.ID {
			t.Fatalf("summaries = %+v, want only order %d", summaries, first.ID)
		}
		// Только позиция с краской: 2 * 25.50.
		if want := decimal.RequireFromString("51.00"); !summaries[0].Total.Equal(want) {
			t.Errorf("total = %s, want %s", summaries[0].Total, want)
		}
	})

	t.Run("date range bounds are inclusive per day", func(t *testing.T) {
		today := time.Now().UTC()
		from := domain.StartOfDay(today)
		to := domain.EndOfDay(today)
		summaries, err := f.orders.Search(domain.SearchFilter{}.WithDateRange(&from, &to))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 2 {
			t.Errorf("got %d summaries, want 2", len(summaries))
		}

		tomorrow := domain.StartOfDay(today.AddDate(0, 0, 1))
		summaries, err = f.orders.Search(domain.SearchFilter{}.WithDateRange(&tomorrow, nil))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 0 {
			t.Errorf("got %d summaries for tomorrow, want 0", len(summaries))
		}
	})

	t.Run("order id filter", func(t *testing.T) {
		id := second.ID
		summaries, err := f.orders.Search(domain.SearchFilter{OrderID: &id})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 1 || summaries[0].OrderID != second.ID {
			t.Fatalf("summaries = %+v, want only order %d", summaries, second.ID)
		}
	})
}

func TestOrderRepositoryGet(t *testing.T) {
	f := newTestFixture(t)
	client := f.addClient(t, "Acme Ltd", "acme@example.com")
	product := f.addProduct(t, "Steel bolt M6", "10.00", 5)

	placed, err := f.orders.Place(client.ID, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	got, err := f.orders.Get(placed.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.ID != placed.ID || len(got.Items) != 1 {
		t.Errorf("got order %+v, want id %d with 1 item", got, placed.ID)
	}

	if _, err := f.orders.Get(999); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("missing order error = %v, want ErrOrderNotFound", err)
	}
}
