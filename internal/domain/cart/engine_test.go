package cart

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/swift-grocers/internal/domain/product"
	"github.com/xenking/swift-grocers/internal/notify"
	"github.com/xenking/swift-grocers/internal/storage"
)

// --- Fakes ---

type flakyStore struct {
	*storage.Memory
	readErr  error
	writeErr error
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: storage.NewMemory()}
}

func (s *flakyStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.Memory.Read(ctx, key)
}

func (s *flakyStore) Write(ctx context.Context, key string, value []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.Memory.Write(ctx, key, value)
}

type countingBus struct{ n int }

func (b *countingBus) Notify(context.Context) { b.n++ }

// --- Helpers ---

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(store storage.Store, bus Notifier) *Engine {
	return NewEngine(store, bus, WithClock(func() time.Time { return fixedNow }))
}

func tomatoes() product.Product {
	return product.Product{ID: "p1", Name: "Fresh Organic Tomatoes", Price: 850, Category: "vegetables", Image: "tomatoes.jpg"}
}

func rice() product.Product {
	return product.Product{ID: "p2", Name: "Premium Rice (5kg)", Price: 3500, Category: "grains", Image: "rice.jpg"}
}

func milk() product.Product {
	return product.Product{ID: "p3", Name: "Fresh Milk (1L)", Price: 1200, Category: "dairy", Image: "milk.jpg"}
}

// --- Tests ---

func TestEngine_AddMergesByID(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(storage.NewMemory(), nil)

	e.AddItem(ctx, tomatoes(), 2)
	c := e.AddItem(ctx, product.Product{ID: "p1", Name: "Tomatoes (new name)", Price: 999}, 3)

	require.Len(t, c.Items, 1)
	assert.Equal(t, "p1", c.Items[0].ID)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(850), c.Items[0].Price, "price is locked at first add")
	assert.Equal(t, fixedNow, c.Items[0].AddedAt)
}

func TestEngine_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(storage.NewMemory(), nil)

	e.AddItem(ctx, rice(), 1)
	e.AddItem(ctx, tomatoes(), 1)
	c := e.AddItem(ctx, rice(), 1)

	require.Len(t, c.Items, 2)
	assert.Equal(t, "p2", c.Items[0].ID)
	assert.Equal(t, "p1", c.Items[1].ID)
}

func TestEngine_AddNonPositiveQuantityAddsOne(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(storage.NewMemory(), nil)

	c := e.AddItem(ctx, tomatoes(), 0)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)

	c = e.AddItem(ctx, tomatoes(), -4)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestEngine_AddInvalidProductIsIgnored(t *testing.T) {
	ctx := context.Background()
	bus := &countingBus{}
	e := newTestEngine(storage.NewMemory(), bus)

	c := e.AddItem(ctx, product.Product{Name: "no id"}, 1)

	assert.True(t, c.Empty())
	assert.Zero(t, bus.n)
}

func TestEngine_IdempotentRemoval(t *testing.T) {
	for _, id := range []string{"p1", "absent"} {
		t.Run(id, func(t *testing.T) {
			ctx := context.Background()
			e := newTestEngine(storage.NewMemory(), nil)
			e.AddItem(ctx, tomatoes(), 1)
			e.AddItem(ctx, rice(), 2)

			once := e.RemoveItem(ctx, id)
			twice := e.RemoveItem(ctx, id)

			assert.Equal(t, once, twice)
			assert.Equal(t, once, e.Items(ctx))
		})
	}
}

func TestEngine_RemoveAbsentStillNotifies(t *testing.T) {
	ctx := context.Background()
	bus := &countingBus{}
	e := newTestEngine(storage.NewMemory(), bus)

	c := e.RemoveItem(ctx, "nothing-here")

	assert.True(t, c.Empty())
	assert.Equal(t, 1, bus.n)
}

func TestEngine_QuantityFloor(t *testing.T) {
	for _, qty := range []int{0, -5} {
		ctx := context.Background()
		e := newTestEngine(storage.NewMemory(), nil)
		e.AddItem(ctx, tomatoes(), 3)
		e.AddItem(ctx, rice(), 1)

		c := e.SetQuantity(ctx, "p1", qty)

		_, found := c.Find("p1")
		assert.False(t, found, "quantity %d removes the line", qty)
		assert.Len(t, c.Items, 1)
	}
}

func TestEngine_SetQuantity(t *testing.T) {
	ctx := context.Background()
	bus := &countingBus{}
	e := newTestEngine(storage.NewMemory(), bus)
	e.AddItem(ctx, tomatoes(), 1)

	c := e.SetQuantity(ctx, "p1", 250)

	it, ok := c.Find("p1")
	require.True(t, ok)
	assert.Equal(t, 250, it.Quantity, "no upper bound at this layer")
	assert.Equal(t, 2, bus.n)
}

func TestEngine_SetQuantityUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	bus := &countingBus{}
	e := newTestEngine(storage.NewMemory(), bus)
	before := e.AddItem(ctx, tomatoes(), 1)

	after := e.SetQuantity(ctx, "missing", 4)

	assert.Equal(t, before, after)
	assert.Equal(t, 1, bus.n, "no notification for an unknown id")
}

func TestEngine_Total(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(storage.NewMemory(), nil)
	e.AddItem(ctx, tomatoes(), 3)
	e.AddItem(ctx, rice(), 2)

	assert.Equal(t, int64(850*3+3500*2), e.Total(ctx))
	assert.Equal(t, int64(9550), e.Total(ctx))
	assert.Equal(t, 5, e.ItemCount(ctx))
}

func TestEngine_ReadsDoNotNotify(t *testing.T) {
	ctx := context.Background()
	bus := &countingBus{}
	e := newTestEngine(storage.NewMemory(), bus)
	e.AddItem(ctx, tomatoes(), 1)

	e.Total(ctx)
	e.ItemCount(ctx)
	e.Items(ctx)

	assert.Equal(t, 1, bus.n)
}

func TestEngine_ClearEmptiesAndNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	bus := notify.New()
	e := newTestEngine(storage.NewMemory(), bus)

	var calls int
	unsub := bus.Subscribe(func(context.Context) { calls++ })
	defer unsub()

	e.AddItem(ctx, tomatoes(), 2)
	e.AddItem(ctx, rice(), 1)
	before := calls

	e.Clear(ctx)

	assert.Zero(t, e.ItemCount(ctx))
	assert.Equal(t, before+1, calls)
}

func TestEngine_NotifyHappensAfterPersist(t *testing.T) {
	ctx := context.Background()
	bus := notify.New()
	store := storage.NewMemory()
	e := newTestEngine(store, bus)

	// A listener elsewhere in the app that only knows the store key.
	var seen []int
	bus.Subscribe(func(ctx context.Context) {
		seen = append(seen, NewEngine(store, nil).ItemCount(ctx))
	})

	e.AddItem(ctx, tomatoes(), 2)
	e.AddItem(ctx, rice(), 1)
	e.SetQuantity(ctx, "p1", 5)
	e.Clear(ctx)

	assert.Equal(t, []int{2, 3, 6, 0}, seen)
}

func TestEngine_ReentrantListenerDoesNotDeadlock(t *testing.T) {
	ctx := context.Background()
	bus := notify.New()
	e := newTestEngine(storage.NewMemory(), bus)

	// A listener that enforces "at most 3 units" by mutating the cart itself.
	bus.Subscribe(func(ctx context.Context) {
		if it, ok := e.Items(ctx).Find("p1"); ok && it.Quantity > 3 {
			e.SetQuantity(ctx, "p1", 3)
		}
	})

	e.AddItem(ctx, tomatoes(), 10)

	assert.Equal(t, 3, e.ItemCount(ctx))
}

func TestEngine_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	ts := []time.Time{
		time.Date(2024, 11, 10, 14, 30, 0, 0, time.UTC),
		time.Date(2024, 11, 10, 14, 31, 7, 123456789, time.UTC),
		time.Date(2024, 11, 11, 9, 0, 0, 1, time.UTC),
	}
	products := []product.Product{tomatoes(), rice(), milk()}

	i := 0
	writer := NewEngine(store, nil, WithClock(func() time.Time { return ts[i] }))
	for ; i < len(products); i++ {
		writer.AddItem(ctx, products[i], i+1)
	}
	original := writer.Items(ctx)
	require.Len(t, original.Items, 3)

	reloaded := NewEngine(store, nil).Items(ctx)

	assert.Equal(t, original, reloaded)
	for j := range ts {
		assert.Equal(t, ts[j], reloaded.Items[j].AddedAt)
	}
}

func TestEngine_UserPartition(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	alice := NewEngine(store, nil, WithUser("alice"))
	bob := NewEngine(store, nil, WithUser("bob"))

	alice.AddItem(ctx, tomatoes(), 2)
	bob.AddItem(ctx, rice(), 1)

	assert.Equal(t, "swift_grocers_cart:alice", alice.Key())
	assert.Equal(t, int64(1700), alice.Total(ctx))
	assert.Equal(t, int64(3500), bob.Total(ctx))
}

func TestEngine_ReadFailureDegradesToEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))
	store := newFlakyStore()
	e := newTestEngine(store, nil)
	e.AddItem(ctx, tomatoes(), 2)

	store.readErr = storage.Unavailable(errors.New("storage disabled"), "read")

	assert.True(t, e.Items(ctx).Empty())
	assert.Zero(t, e.Total(ctx))
	assert.Zero(t, e.ItemCount(ctx))
	assert.Equal(t, 3, logs.FilterMessage("Cart read failed, using empty cart").Len())
}

func TestEngine_WriteFailureKeepsPreviousCart(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))
	store := newFlakyStore()
	bus := &countingBus{}
	e := newTestEngine(store, bus)
	before := e.AddItem(ctx, tomatoes(), 2)

	store.writeErr = storage.Unavailable(errors.New("quota exceeded"), "write")

	assert.Equal(t, before, e.AddItem(ctx, rice(), 1))
	assert.Equal(t, before, e.Clear(ctx))
	assert.Equal(t, before, e.RemoveItem(ctx, "p1"))
	assert.Equal(t, 1, bus.n, "failed writes are not announced")
	assert.Equal(t, 3, logs.FilterMessage("Cart write failed, keeping previous cart").Len())

	store.writeErr = nil
	assert.Equal(t, 2, e.ItemCount(ctx))
}

func TestEngine_CorruptDocumentDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Write(ctx, storage.CartKey, []byte(`{not json`)))
	e := newTestEngine(store, nil)

	assert.True(t, e.Items(ctx).Empty())

	// The next mutation replaces the unreadable document.
	c := e.AddItem(ctx, tomatoes(), 1)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, 1, NewEngine(store, nil).ItemCount(ctx))
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	bus := &countingBus{}
	cartEngine := newTestEngine(store, bus)
	saved := NewEngine(store, bus, WithKey(storage.SavedKey))

	cartEngine.AddItem(ctx, tomatoes(), 3)
	cartEngine.AddItem(ctx, rice(), 1)

	require.True(t, Move(ctx, cartEngine, saved, "p1"))
	assert.Equal(t, 1, cartEngine.ItemCount(ctx))
	it, ok := saved.Items(ctx).Find("p1")
	require.True(t, ok)
	assert.Equal(t, 3, it.Quantity)
	assert.Equal(t, int64(850), it.Price)

	assert.False(t, Move(ctx, cartEngine, saved, "p1"), "already moved")

	require.True(t, Move(ctx, saved, cartEngine, "p1"))
	assert.Equal(t, 4, cartEngine.ItemCount(ctx))
	assert.True(t, saved.Items(ctx).Empty())
}

func TestMove_DestinationWriteFailureKeepsSource(t *testing.T) {
	ctx := context.Background()
	src := newTestEngine(storage.NewMemory(), nil)
	broken := newFlakyStore()
	broken.writeErr = storage.Unavailable(errors.New("disk full"), "write")
	dst := NewEngine(broken, nil, WithKey(storage.SavedKey))

	src.AddItem(ctx, tomatoes(), 1)

	assert.False(t, Move(ctx, src, dst, "p1"))
	assert.Equal(t, 1, src.ItemCount(ctx))
}
