package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

func seedClient(t *testing.T, store *Store, name, email string) domain.Client {
	t.Helper()

	client, err := NewClientRepository(store).Create(domain.Client{Name: name, Email: email})
	if err != nil {
		t.Fatalf("seed client %q: %v", name, err)
	}
	return client
}

func seedProduct(t *testing.T, store *Store, desc, price string, stock int32) domain.Product {
	t.Helper()

	product, err := NewProductRepository(store).Create(domain.Product{
		Description: desc,
		UnitPrice:   decimal.RequireFromString(price),
		StockQty:    stock,
	})
	if err != nil {
		t.Fatalf("seed product %q: %v", desc, err)
	}
	return product
}

func stockOf(t *testing.T, store *Store, productID int64) int32 {
	t.Helper()

	product, err := NewProductRepository(store).Get(productID)
	if err != nil {
		t.Fatalf("get product %d: %v", productID, err)
	}
	return product.StockQty
}

func TestClientRepositoryIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewClientRepository(store)

	created, err := repo.Create(domain.Client{Name: "Acme Ltd", Email: "acme@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.RegisteredAt.IsZero() {
		t.Errorf("created client is missing store-assigned fields: %+v", created)
	}

	if _, err := repo.Create(domain.Client{Name: "Copy", Email: "acme@example.com"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}

	found, err := repo.FindByTerm("ACME")
	if err != nil {
		t.Fatalf("find by term: %v", err)
	}
	if len(found) != 1 || found[0].ID != created.ID {
		t.Errorf("find by name fragment = %+v", found)
	}
}

func TestOrderRepositoryPlaceIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	client := seedClient(t, store, "Acme Ltd", "acme@example.com")
	product := seedProduct(t, store, "Steel bolt M6", "10.00", 5)

	repo := NewOrderRepository(store)
	order, err := repo.Place(client.ID, []domain.OrderLine{
		{ProductID: product.ID, Quantity: 3, DiscountPercent: 10},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if order.ID == 0 || order.PlacedAt.IsZero() || len(order.Items) != 1 {
		t.Fatalf("placed order is incomplete: %+v", order)
	}
	if !order.Items[0].UnitPrice.Equal(product.UnitPrice) {
		t.Errorf("price snapshot = %s, want %s", order.Items[0].UnitPrice, product.UnitPrice)
	}
	if got := stockOf(t, store, product.ID); got != 2 {
		t.Errorf("stock after placement = %d, want 2", got)
	}

	var outboxCount int
	if err := store.DB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM outbox_messages WHERE status = 'pending'`).Scan(&outboxCount); err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	if outboxCount != 1 {
		t.Errorf("pending outbox messages = %d, want 1", outboxCount)
	}

	t.Run("oversell rejected and stock kept", func(t *testing.T) {
		_, err := repo.Place(client.ID, []domain.OrderLine{
			{ProductID: product.ID, Quantity: 3},
		})
		if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("oversell error = %v, want ErrInsufficientStock", err)
		}
		if got := stockOf(t, store, product.ID); got != 2 {
			t.Errorf("stock after rejected placement = %d, want 2", got)
		}
	})

	t.Run("unknown product rolls back whole order", func(t *testing.T) {
		_, err := repo.Place(client.ID, []domain.OrderLine{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: 99999, Quantity: 1},
		})
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("error = %v, want ErrProductNotFound", err)
		}
		if got := stockOf(t, store, product.ID); got != 2 {
			t.Errorf("stock after rollback = %d, want 2", got)
		}
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := repo.Place(99999, []domain.OrderLine{
			{ProductID: product.ID, Quantity: 1},
		})
		if !errors.Is(err, domain.ErrClientNotFound) {
			t.Fatalf("error = %v, want ErrClientNotFound", err)
		}
	})
}

func TestOrderRepositorySearchIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	acme := seedClient(t, store, "Acme Ltd", "acme@example.com")
	globex := seedClient(t, store, "Globex", "globex@example.com")
	bolt := seedProduct(t, store, "Steel bolt M6", "10.00", 100)
	paint := seedProduct(t, store, "Red paint 1L", "25.50", 100)

	repo := NewOrderRepository(store)
	first, err := repo.Place(acme.ID, []domain.OrderLine{
		{ProductID: bolt.ID, Quantity: 3, DiscountPercent: 10},
		{ProductID: paint.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("place first: %v", err)
	}
	if _, err := repo.Place(globex.ID, []domain.OrderLine{
		{ProductID: bolt.ID, Quantity: 1},
	}); err != nil {
		t.Fatalf("place second: %v", err)
	}

	t.Run("no filters returns everything", func(t *testing.T) {
		summaries, err := repo.Search(domain.SearchFilter{})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("got %d summaries, want 2", len(summaries))
		}
		report := domain.NewOrderReport(summaries)
		if want := decimal.RequireFromString("88.00"); !report.GrandTotal.Equal(want) {
			t.Errorf("grand total = %s, want %s", report.GrandTotal, want)
		}
	})

	t.Run("client name fragment", func(t *testing.T) {
		summaries, err := repo.Search(domain.SearchFilter{}.WithClientTerm("acme"))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 1 || summaries[0].OrderID != first.ID {
			t.Fatalf("summaries = %+v, want only order %d", summaries, first.ID)
		}
		if want := decimal.RequireFromString("78.00"); !summaries[0].Total.Equal(want) {
			t.Errorf("total = %s, want %s", summaries[0].Total, want)
		}
	})

	t.Run("product filter narrows the aggregated total", func(t *testing.T) {
		summaries, err := repo.Search(domain.SearchFilter{}.WithProductTerm("paint"))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 1 || summaries[0].OrderID != first.ID {
			t.Fatalf("summaries = %+v, want only order %d", summaries, first.ID)
		}
		if want := decimal.RequireFromString("51.00"); !summaries[0].Total.Equal(want) {
			t.Errorf("total = %s, want %s", summaries[0].Total, want)
		}
	})

	t.Run("single day range includes the whole day", func(t *testing.T) {
		today := time.Now().UTC()
		summaries, err := repo.Search(domain.SearchFilter{}.WithDateRange(&today, &today))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(summaries) != 2 {
			t.Errorf("got %d summaries, want 2", len(summaries))
		}
	})

	t.Run("get returns items in insertion order", func(t *testing.T) {
		got, err := repo.Get(first.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(got.Items) != 2 || got.Items[0].ProductID != bolt.ID {
			t.Errorf("items = %+v", got.Items)
		}
	})
}
