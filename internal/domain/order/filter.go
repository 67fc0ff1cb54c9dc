package order

import (
	"context"
	"strings"
)

// Filter narrows List results. The zero value matches every order.
type Filter struct {
	Status Status
	// ReturnsOnly keeps orders with a return request or in the returned state.
	ReturnsOnly bool
	// Query matches the order ID or any item name, case-insensitively.
	Query string
}

// Match reports whether o passes the filter.
func (f Filter) Match(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.ReturnsOnly && !o.ReturnRequested && o.Status != StatusReturned {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(o.ID), q) {
		return true
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			return true
		}
	}
	return false
}

// Filter returns the orders matching f, in creation order.
func (m *Manager) Filter(ctx context.Context, f Filter) []Order {
	var out []Order
	for _, o := range m.List(ctx) {
		if f.Match(&o) {
			out = append(out, o)
		}
	}
	return out
}
