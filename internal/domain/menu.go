package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	CategoryBurgers  = "Burgers"
	CategoryFries    = "Fries"
	CategoryDrinks   = "Drinks"
	CategorySides    = "Sides"
	CategoryDesserts = "Desserts"
)

// CategoryOrder is the fixed sequence in which categories are captured and
// printed on the receipt.
var CategoryOrder = []string{
	CategoryBurgers,
	CategoryFries,
	CategoryDrinks,
	CategorySides,
	CategoryDesserts,
}

var slotLabels = map[string]string{
	CategoryBurgers:  "Burger",
	CategoryFries:    "Fries",
	CategoryDrinks:   "Drink",
	CategorySides:    "Sides",
	CategoryDesserts: "Dessert",
}

// SlotLabel returns the receipt label for a category.
func SlotLabel(category string) (string, bool) {
	label, ok := slotLabels[category]
	return label, ok
}

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownItem     = errors.New("unknown item")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

type Item struct {
	Name    string
	Price   decimal.Decimal
	Aliases []string
}

type Category struct {
	Name  string
	Label string
	Items []Item
}

// HasAliases reports whether any item in the category carries spoken variants.
// Aliased categories are matched on aliases only.
func (c Category) HasAliases() bool {
	for _, item := range c.Items {
		if len(item.Aliases) > 0 {
			return true
		}
	}
	return false
}

func (c Category) Item(name string) (Item, bool) {
	for _, item := range c.Items {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// Catalog is the immutable menu for a session.
type Catalog struct {
	categories []Category
}

// NewCatalog validates and copies the given categories. They must be exactly
// the categories in CategoryOrder, in that order.
func NewCatalog(categories []Category) (*Catalog, error) {
	if len(categories) != len(CategoryOrder) {
		return nil, fmt.Errorf("%w: want %d categories, got %d", ErrInvalidCatalog, len(CategoryOrder), len(categories))
	}

	copied := make([]Category, 0, len(categories))
	for i, cat := range categories {
		if cat.Name != CategoryOrder[i] {
			return nil, fmt.Errorf("%w: category %d is %q, want %q", ErrInvalidCatalog, i, cat.Name, CategoryOrder[i])
		}
		if err := validateCategory(cat); err != nil {
			return nil, err
		}

		label, _ := SlotLabel(cat.Name)
		items := make([]Item, len(cat.Items))
		for j, item := range cat.Items {
			items[j] = Item{
				Name:    strings.TrimSpace(item.Name),
				Price:   item.Price,
				Aliases: normalizeAliases(item.Aliases),
			}
		}
		copied = append(copied, Category{Name: cat.Name, Label: label, Items: items})
	}

	return &Catalog{categories: copied}, nil
}

func validateCategory(cat Category) error {
	if len(cat.Items) == 0 {
		return fmt.Errorf("%w: category %s has no items", ErrInvalidCatalog, cat.Name)
	}

	names := make(map[string]bool, len(cat.Items))
	aliasOwner := make(map[string]string)
	for _, item := range cat.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return fmt.Errorf("%w: empty item name in %s", ErrInvalidCatalog, cat.Name)
		}
		if names[name] {
			return fmt.Errorf("%w: duplicate item %q in %s", ErrInvalidCatalog, name, cat.Name)
		}
		names[name] = true

		if item.Price.IsNegative() {
			return fmt.Errorf("%w: negative price for %q", ErrInvalidCatalog, item.Name)
		}

		for _, alias := range item.Aliases {
			phrase := strings.ToLower(strings.TrimSpace(alias))
			if phrase == "" {
				return fmt.Errorf("%w: empty alias for %q", ErrInvalidCatalog, item.Name)
			}
			if owner, taken := aliasOwner[phrase]; taken && owner != name {
				return fmt.Errorf("%w: alias %q shared by %q and %q", ErrInvalidCatalog, phrase, owner, name)
			}
			aliasOwner[phrase] = name
		}
	}
	return nil
}

// normalizeAliases stores aliases in the form utterances are compared in.
func normalizeAliases(aliases []string) []string {
	if len(aliases) == 0 {
		return nil
	}
	out := make([]string, len(aliases))
	for i, a := range aliases {
		out[i] = strings.ToLower(strings.TrimSpace(a))
	}
	return out
}

// Categories returns the categories in capture order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

func (c *Catalog) Price(category, item string) (decimal.Decimal, error) {
	cat, ok := c.Category(category)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	it, ok := cat.Item(item)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s in %s", ErrUnknownItem, item, category)
	}
	return it.Price, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultCatalog returns the built-in menu.
func DefaultCatalog() *Catalog {
	cat, err := NewCatalog([]Category{
		{
			Name: CategoryBurgers,
			Items: []Item{
				{Name: "Big Mac", Price: price("7.00")},
				{Name: "Cheeseburger", Price: price("3.90")},
				{Name: "McChicken", Price: price("3.65")},
				{Name: "Filet-O-Fish", Price: price("4.80")},
				{Name: "Quarter Pounder with Cheese", Price: price("7.00")},
			},
		},
		{
			Name: CategoryFries,
			Items: []Item{
				{Name: "Small Fries", Price: price("2.85")},
				{Name: "Medium Fries", Price: price("3.95")},
				{Name: "Large Fries", Price: price("4.20")},
			},
		},
		{
			Name: CategoryDrinks,
			Items: []Item{
				{Name: "Coke", Price: price("2.95")},
				{Name: "Sprite", Price: price("2.95")},
				{Name: "Fanta", Price: price("2.95")},
				{Name: "Iced Milo", Price: price("3.80")},
			},
		},
		{
			Name: CategorySides,
			Items: []Item{
				{Name: "6 pieces Chicken Nuggets", Price: price("5.75"), Aliases: []string{
					"six pieces of chicken nuggets",
					"six pieces chicken nuggets",
					"6 pieces of chicken nuggets",
					"6 pieces chicken nuggets",
				}},
				{Name: "20 pieces Chicken Nuggets", Price: price("13.70"), Aliases: []string{
					"twenty pieces of chicken nuggets",
					"twenty pieces chicken nuggets",
					"20 pieces of chicken nuggets",
					"20 pieces chicken nuggets",
				}},
				{Name: "Banana Pie", Price: price("1.85"), Aliases: []string{"banana pie"}},
				{Name: "Apple Pie", Price: price("2.10"), Aliases: []string{"apple pie"}},
			},
		},
		{
			Name: CategoryDesserts,
			Items: []Item{
				{Name: "Strawberry Shortcake McFlurry", Price: price("4.00")},
				{Name: "Oreo McFlurry", Price: price("3.60")},
				{Name: "Hot Fudge Sundae", Price: price("2.80")},
				{Name: "Soft Serve Cone", Price: price("1.20")},
			},
		},
	})
	if err != nil {
		panic("domain: default catalog: " + err.Error())
	}
	return cat
}
