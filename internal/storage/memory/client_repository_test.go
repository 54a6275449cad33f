package memory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

func TestClientRepositoryCreate(t *testing.T) {
	repo := NewClientRepository()

	client, err := repo.Create(domain.Client{Name: "Acme Ltd", Email: "acme@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if client.ID == 0 {
		t.Error("created client has no id")
	}
	if client.RegisteredAt.IsZero() {
		t.Error("created client has no registration time")
	}

	_, err = repo.Create(domain.Client{Name: "Acme Copy", Email: "ACME@example.com"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}
}

func TestClientRepositoryFindByTerm(t *testing.T) {
	repo := NewClientRepository()
	acme, err := repo.Create(domain.Client{Name: "Acme Ltd", Email: "acme@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(domain.Client{Name: "Globex", Email: "globex@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name string
		term string
		want int
	}{
		{name: "id as text", term: "1", want: 1},
		{name: "name substring case-insensitive", term: "ACME", want: 1},
		{name: "substring matching both", term: "l", want: 2},
		{name: "no match", term: "initech", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.FindByTerm(tc.term)
			if err != nil {
				t.Fatalf("find %q: %v", tc.term, err)
			}
			if len(got) != tc.want {
				t.Errorf("find %q returned %d clients, want %d", tc.term, len(got), tc.want)
			}
		})
	}

	byID, err := repo.FindByTerm("1")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != acme.ID {
		t.Errorf("find by id = %+v, want client %d", byID, acme.ID)
	}
}

func TestProductRepositoryFindByTerm(t *testing.T) {
	repo := NewProductRepository()
	bolt, err := repo.Create(domain.Product{
		Description: "Steel bolt M6",
		UnitPrice:   decimal.RequireFromString("10.00"),
		StockQty:    5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(domain.Product{
		Description: "Red paint 1L",
		UnitPrice:   decimal.RequireFromString("25.50"),
		StockQty:    3,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByTerm("bolt")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != bolt.ID {
		t.Errorf("find bolt = %+v, want product %d", got, bolt.ID)
	}

	got, err = repo.FindByTerm("2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Description != "Red paint 1L" {
		t.Errorf("find by id = %+v, want paint", got)
	}
}
