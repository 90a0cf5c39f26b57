package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"talk2order/internal/domain"
)

func TestDefaultCatalog_Order(t *testing.T) {
	cats := domain.DefaultCatalog().Categories()
	if len(cats) != len(domain.CategoryOrder) {
		t.Fatalf("categories: got %d, want %d", len(cats), len(domain.CategoryOrder))
	}

	wantLabels := []string{"Burger", "Fries", "Drink", "Sides", "Dessert"}
	for i, c := range cats {
		if c.Name != domain.CategoryOrder[i] {
			t.Errorf("category %d: got %s, want %s", i, c.Name, domain.CategoryOrder[i])
		}
		if c.Label != wantLabels[i] {
			t.Errorf("label for %s: got %s, want %s", c.Name, c.Label, wantLabels[i])
		}
		if len(c.Items) == 0 {
			t.Errorf("category %s has no items", c.Name)
		}
	}

	sides, _ := domain.DefaultCatalog().Category(domain.CategorySides)
	if !sides.HasAliases() {
		t.Error("sides should carry aliases")
	}
	burgers, _ := domain.DefaultCatalog().Category(domain.CategoryBurgers)
	if burgers.HasAliases() {
		t.Error("burgers should not carry aliases")
	}
}

func validCategories() []domain.Category {
	cats := make([]domain.Category, 0, len(domain.CategoryOrder))
	for _, name := range domain.CategoryOrder {
		cats = append(cats, domain.Category{
			Name:  name,
			Items: []domain.Item{{Name: name + " item", Price: decimal.RequireFromString("1.00")}},
		})
	}
	return cats
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]domain.Category) []domain.Category
	}{
		{"missing category", func(c []domain.Category) []domain.Category { return c[:4] }},
		{"wrong order", func(c []domain.Category) []domain.Category {
			c[0], c[1] = c[1], c[0]
			return c
		}},
		{"empty category", func(c []domain.Category) []domain.Category {
			c[2].Items = nil
			return c
		}},
		{"negative price", func(c []domain.Category) []domain.Category {
			c[1].Items[0].Price = decimal.RequireFromString("-1")
			return c
		}},
		{"duplicate item", func(c []domain.Category) []domain.Category {
			c[0].Items = append(c[0].Items, c[0].Items[0])
			return c
		}},
		{"shared alias", func(c []domain.Category) []domain.Category {
			c[3].Items = []domain.Item{
				{Name: "A", Price: decimal.Zero, Aliases: []string{"pie"}},
				{Name: "B", Price: decimal.Zero, Aliases: []string{"Pie "}},
			}
			return c
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewCatalog(tt.mutate(validCategories()))
			if !errors.Is(err, domain.ErrInvalidCatalog) {
				t.Errorf("got %v, want ErrInvalidCatalog", err)
			}
		})
	}

	if _, err := domain.NewCatalog(validCategories()); err != nil {
		t.Errorf("valid catalog rejected: %v", err)
	}
}

func TestCatalog_Price(t *testing.T) {
	c := domain.DefaultCatalog()

	p, err := c.Price(domain.CategorySides, "20 pieces Chicken Nuggets")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if !p.Equal(decimal.RequireFromString("13.70")) {
		t.Errorf("got %s, want 13.70", p)
	}

	if _, err := c.Price(domain.CategorySides, "Hash Brown"); !errors.Is(err, domain.ErrUnknownItem) {
		t.Errorf("unknown item: got %v", err)
	}
	if _, err := c.Price("Salads", "Caesar"); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("unknown category: got %v", err)
	}
}

func TestNewCatalog_NormalizesNamesAndAliases(t *testing.T) {
	cats := validCategories()
	cats[3].Items = []domain.Item{
		{Name: "  Onion Rings ", Price: decimal.RequireFromString("3.30"), Aliases: []string{" Onion RINGS ", "rings"}},
	}

	catalog, err := domain.NewCatalog(cats)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	sides, _ := catalog.Category(domain.CategorySides)
	item, ok := sides.Item("Onion Rings")
	if !ok {
		t.Fatalf("item name should be trimmed: %+v", sides.Items)
	}
	want := []string{"onion rings", "rings"}
	for i, a := range item.Aliases {
		if a != want[i] {
			t.Errorf("alias %d: got %q, want %q", i, a, want[i])
		}
	}
}
