package cart

import (
	"context"
)

// Move transfers the line for id from one engine to another, keeping its
// quantity and snapshot price. It backs "save for later" and "move to cart".
//
// The destination is written first, so a failure between the two writes
// leaves the item in both places rather than in neither. Move reports
// whether the item ended up in the destination.
func Move(ctx context.Context, from, to *Engine, id string) bool {
	item, ok := from.Items(ctx).Find(id)
	if !ok {
		return false
	}

	if _, ok := to.add(ctx, item.Product(), item.Quantity); !ok {
		return false
	}
	from.remove(ctx, id)
	return true
}
