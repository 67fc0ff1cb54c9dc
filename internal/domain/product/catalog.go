package product

import (
	"context"

	"github.com/go-faster/errors"
)

var _ Repository = (*Catalog)(nil)

// Catalog is a fixed, in-memory product list.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// NewCatalog returns a catalog over products. Later duplicates of an ID are
// ignored.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if _, ok := c.byID[p.ID]; ok {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// List returns every product in catalog order.
func (c *Catalog) List(_ context.Context) ([]Product, error) {
	return append([]Product(nil), c.products...), nil
}

// GetByID returns the product with the given ID.
func (c *Catalog) GetByID(_ context.Context, id string) (*Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	p := c.products[i]
	return &p, nil
}

// DemoProducts is the storefront's demo assortment.
func DemoProducts() []Product {
	const img = "https://images.unsplash.com/"
	return []Product{
		{ID: "prod-1", Name: "Fresh Organic Tomatoes", Price: 850, Category: "Fresh Produce", Image: img + "photo-1546094096-0df4bcaaa337?w=400"},
		{ID: "prod-2", Name: "Premium Rice (5kg)", Price: 3500, Category: "Grains", Image: img + "photo-1586201375761-83865001e31c?w=400"},
		{ID: "prod-3", Name: "Fresh Milk (1L)", Price: 1200, Category: "Dairy", Image: img + "photo-1563636619-e9143da7973b?w=400"},
		{ID: "prod-4", Name: "Whole Wheat Bread", Price: 650, Category: "Bakery", Image: img + "photo-1509440159596-0249088772ff?w=400"},
		{ID: "prod-5", Name: "Organic Chicken (1kg)", Price: 4500, Category: "Meat & Poultry", Image: img + "photo-1607623814075-e51df1bdc82f?w=400"},
		{ID: "prod-6", Name: "Fresh Vegetables Bundle", Price: 3300, Category: "Fresh Produce", Image: img + "photo-1540420773420-3366772f4999?w=400"},
		{ID: "prod-7", Name: "Breakfast Cereal Box", Price: 2400, Category: "Breakfast", Image: img + "photo-1599599810769-bcde5a160d32?w=400"},
	}
}
