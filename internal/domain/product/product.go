package product

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInvalid is returned when a product lacks the fields a cart line needs.
	ErrInvalid = errors.New("invalid product")
)

// Product is what a product-display surface (card, deals row, seasonal
// banner) hands to the cart. Price is in minor currency units.
type Product struct {
	ID       string
	Name     string
	Price    int64
	Category string
	Image    string
}

// Validate checks the fields the cart relies on.
func (p Product) Validate() error {
	if p.ID == "" {
		return errors.Wrap(ErrInvalid, "id is required")
	}
	if p.Price < 0 {
		return errors.Wrapf(ErrInvalid, "negative price for %s", p.ID)
	}
	return nil
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
