package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"talk2order/internal/domain"
)

type menuFile struct {
	Categories []menuCategory `yaml:"categories"`
}

type menuCategory struct {
	Name  string     `yaml:"name"`
	Items []menuItem `yaml:"items"`
}

type menuItem struct {
	Name    string   `yaml:"name"`
	Price   string   `yaml:"price"`
	Aliases []string `yaml:"aliases"`
}

// LoadMenu reads a catalog file. An empty path selects the built-in menu.
func LoadMenu(path string) (*domain.Catalog, error) {
	if path == "" {
		return domain.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading menu file: %w", err)
	}
	return ParseMenu(data)
}

// ParseMenu decodes a catalog. Prices are strings so they stay exact.
func ParseMenu(data []byte) (*domain.Catalog, error) {
	var mf menuFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing menu: %w", err)
	}

	categories := make([]domain.Category, 0, len(mf.Categories))
	for _, mc := range mf.Categories {
		cat := domain.Category{Name: mc.Name}
		for _, mi := range mc.Items {
			price, err := decimal.NewFromString(mi.Price)
			if err != nil {
				return nil, fmt.Errorf("menu item %s/%s: price %q: %w", mc.Name, mi.Name, mi.Price, err)
			}
			cat.Items = append(cat.Items, domain.Item{
				Name:    mi.Name,
				Price:   price,
				Aliases: mi.Aliases,
			})
		}
		categories = append(categories, cat)
	}

	catalog, err := domain.NewCatalog(categories)
	if err != nil {
		return nil, fmt.Errorf("building menu: %w", err)
	}
	return catalog, nil
}
