package cart

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/swift-grocers/internal/domain/product"
	"github.com/xenking/swift-grocers/internal/storage"
)

// Notifier announces that the cart changed. Listeners re-read the Engine.
type Notifier interface {
	Notify(ctx context.Context)
}

// Engine mutates one persisted cart.
//
// Every mutation is a single read-modify-write of the store slot, serialized
// by the engine, followed by a notification once the write has completed.
// Store failures never reach the caller: reads degrade to an empty cart and
// failed writes leave the cart as it was.
type Engine struct {
	store storage.Store
	bus   Notifier
	key   string
	user  string
	now   func() time.Time

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithKey overrides the store key (storage.CartKey by default).
func WithKey(key string) Option {
	return func(e *Engine) { e.key = key }
}

// WithUser partitions the cart by user ID.
func WithUser(userID string) Option {
	return func(e *Engine) { e.user = userID }
}

// WithClock sets the clock used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine over store. bus may be nil.
func NewEngine(store storage.Store, bus Notifier, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		bus:   bus,
		key:   storage.CartKey,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.key = storage.UserKey(e.key, e.user)
	return e
}

// Key returns the store key this engine owns.
func (e *Engine) Key() string {
	return e.key
}

// AddItem adds quantity units of p, merging into an existing line with the
// same product ID. Quantities below one add a single unit.
func (e *Engine) AddItem(ctx context.Context, p product.Product, quantity int) Cart {
	c, _ := e.add(ctx, p, quantity)
	return c
}

func (e *Engine) add(ctx context.Context, p product.Product, quantity int) (Cart, bool) {
	if err := p.Validate(); err != nil {
		zctx.From(ctx).Warn("Ignoring add to cart", zap.Error(err))
		return e.Items(ctx), false
	}
	if quantity < 1 {
		quantity = 1
	}

	return e.mutate(ctx, "add", func(c *Cart) bool {
		if i := c.index(p.ID); i >= 0 {
			c.Items[i].Quantity += quantity
			return true
		}
		c.Items = append(c.Items, LineItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Category: p.Category,
			Quantity: quantity,
			AddedAt:  e.now().UTC(),
		})
		return true
	})
}

// SetQuantity sets the quantity of the line for id. A quantity below one
// removes the line. Unknown IDs leave the cart untouched and notify nobody.
func (e *Engine) SetQuantity(ctx context.Context, id string, quantity int) Cart {
	if quantity < 1 {
		return e.RemoveItem(ctx, id)
	}

	c, _ := e.mutate(ctx, "set_quantity", func(c *Cart) bool {
		i := c.index(id)
		if i < 0 {
			return false
		}
		c.Items[i].Quantity = quantity
		return true
	})
	return c
}

// RemoveItem drops the line for id. It always persists and notifies, so
// calling it for an absent ID is a harmless no-op.
func (e *Engine) RemoveItem(ctx context.Context, id string) Cart {
	c, _ := e.remove(ctx, id)
	return c
}

func (e *Engine) remove(ctx context.Context, id string) (Cart, bool) {
	return e.mutate(ctx, "remove", func(c *Cart) bool {
		if i := c.index(id); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		if len(c.Items) == 0 {
			c.Items = nil
		}
		return true
	})
}

// Clear empties the cart.
func (e *Engine) Clear(ctx context.Context) Cart {
	c, _ := e.mutate(ctx, "clear", func(c *Cart) bool {
		c.Items = nil
		return true
	})
	return c
}

// Items returns the current cart.
func (e *Engine) Items(ctx context.Context) Cart {
	return e.load(ctx)
}

// Total returns Σ(price × quantity) of the current cart.
func (e *Engine) Total(ctx context.Context) int64 {
	return e.load(ctx).Total()
}

// ItemCount returns Σ(quantity) of the current cart.
func (e *Engine) ItemCount(ctx context.Context) int {
	return e.load(ctx).ItemCount()
}

func (e *Engine) load(ctx context.Context) Cart {
	data, err := e.store.Read(ctx, e.key)
	if err != nil {
		zctx.From(ctx).Warn("Cart read failed, using empty cart",
			zap.String("key", e.key),
			zap.Error(err),
		)
		return Cart{}
	}

	items, err := Decode(data)
	if err != nil {
		zctx.From(ctx).Warn("Cart is unreadable, using empty cart",
			zap.String("key", e.key),
			zap.Error(err),
		)
		return Cart{}
	}
	return Cart{Items: items}
}

// mutate runs fn against a copy of the stored cart and persists the result
// when fn reports a change. It returns the cart as it stands afterwards and
// whether a write happened.
func (e *Engine) mutate(ctx context.Context, op string, fn func(c *Cart) bool) (Cart, bool) {
	e.mu.Lock()
	current := e.load(ctx)
	next := current.clone()
	if !fn(&next) {
		e.mu.Unlock()
		return current, false
	}

	err := e.store.Write(ctx, e.key, Encode(next.Items))
	e.mu.Unlock()

	if err != nil {
		zctx.From(ctx).Warn("Cart write failed, keeping previous cart",
			zap.String("op", op),
			zap.String("key", e.key),
			zap.Error(err),
		)
		return current, false
	}

	if e.bus != nil {
		e.bus.Notify(ctx)
	}
	return next, true
}
