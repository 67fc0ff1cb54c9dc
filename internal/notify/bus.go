// Package notify implements an in-process change notification bus.
//
// Notifications carry no payload: a handler reacts by re-reading whatever
// state it renders. That makes duplicate or coalesced notifications harmless,
// which is what lets the bus stay re-entrant without queues or locks held
// across handler calls.
package notify

import (
	"context"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// maxRounds bounds how many times a single dispatch loop re-runs the
// handlers for notifications that arrived while it was running.
const maxRounds = 16

// Handler is invoked synchronously on Notify.
type Handler func(ctx context.Context)

// Bus fans a "state changed" signal out to subscribers. The zero value is
// ready to use.
type Bus struct {
	mu          sync.Mutex
	seq         uint64
	handlers    map[uint64]Handler
	dispatching bool
	pending     bool
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it. The returned
// function may be called any number of times.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}

	b.mu.Lock()
	if b.handlers == nil {
		b.handlers = make(map[uint64]Handler)
	}
	b.seq++
	id := b.seq
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Notify runs every subscribed handler once, in no particular order.
//
// A Notify issued while handlers are already running, whether from inside a
// handler or from another goroutine, returns immediately and schedules one
// more round on the running dispatch instead.
func (b *Bus) Notify(ctx context.Context) {
	b.mu.Lock()
	if b.dispatching {
		b.pending = true
		b.mu.Unlock()
		return
	}
	b.dispatching = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.dispatching = false
		b.pending = false
		b.mu.Unlock()
	}()

	for round := 1; ; round++ {
		for _, id := range b.snapshot() {
			if h, ok := b.lookup(id); ok {
				h(ctx)
			}
		}

		b.mu.Lock()
		again := b.pending
		b.pending = false
		b.mu.Unlock()

		if !again {
			return
		}
		if round == maxRounds {
			zctx.From(ctx).Warn("Dropping notification, handlers keep re-notifying",
				zap.Int("rounds", round),
			)
			return
		}
	}
}

func (b *Bus) snapshot() []uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]uint64, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	return ids
}

// lookup re-checks membership so a handler removed mid-round is skipped.
func (b *Bus) lookup(id uint64) (Handler, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.handlers[id]
	return h, ok
}
