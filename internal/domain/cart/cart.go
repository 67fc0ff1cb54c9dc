// Package cart implements the persisted shopping cart: a collection of line
// items that many independent UI surfaces mutate through an Engine, and that
// those surfaces keep in sync through change notifications instead of a
// shared in-memory store.
package cart

import (
	"time"

	"github.com/xenking/swift-grocers/internal/domain/product"
)

// LineItem is one product entry in a cart.
//
// Price is captured when the product is first added and is never refreshed
// from the catalog afterwards.
type LineItem struct {
	ID       string
	Name     string
	Price    int64
	Image    string
	Category string
	Quantity int
	AddedAt  time.Time
}

// Subtotal returns Price × Quantity.
func (li LineItem) Subtotal() int64 {
	return li.Price * int64(li.Quantity)
}

// Product returns the product snapshot the line was created from.
func (li LineItem) Product() product.Product {
	return product.Product{
		ID:       li.ID,
		Name:     li.Name,
		Price:    li.Price,
		Category: li.Category,
		Image:    li.Image,
	}
}

// Cart is an ordered set of line items, at most one per product ID.
type Cart struct {
	Items []LineItem
}

// Total returns Σ(price × quantity).
func (c Cart) Total() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.Subtotal()
	}
	return sum
}

// ItemCount returns Σ(quantity).
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Find returns the line for id.
func (c Cart) Find(id string) (LineItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

func (c Cart) index(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	return Cart{Items: append([]LineItem(nil), c.Items...)}
}

// normalize restores the cart invariants on data that came from outside:
// quantities below one count as one, and duplicate IDs are merged into the
// first occurrence.
func normalize(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LineItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if i, ok := seen[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
