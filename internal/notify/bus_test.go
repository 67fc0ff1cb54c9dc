package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBus_NotifyRunsEverySubscriber(t *testing.T) {
	ctx := context.Background()
	b := New()

	var a, c int
	b.Subscribe(func(context.Context) { a++ })
	b.Subscribe(func(context.Context) { c++ })

	b.Notify(ctx)
	b.Notify(ctx)

	assert.Equal(t, 2, a)
	assert.Equal(t, 2, c)
}

func TestBus_ZeroValueAndNilHandler(t *testing.T) {
	var b Bus
	b.Notify(context.Background())

	unsub := b.Subscribe(nil)
	unsub()
	assert.Zero(t, b.Len())
}

func TestBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	b := New()

	var calls int
	unsub := b.Subscribe(func(context.Context) { calls++ })
	require.Equal(t, 1, b.Len())

	b.Notify(ctx)
	unsub()
	unsub() // idempotent
	b.Notify(ctx)

	assert.Equal(t, 1, calls)
	assert.Zero(t, b.Len())
}

func TestBus_UnsubscribeDuringDispatchSkipsHandler(t *testing.T) {
	ctx := context.Background()
	b := New()

	var calls int
	var unsubA, unsubB func()
	unsubA = b.Subscribe(func(context.Context) { calls++; unsubB() })
	unsubB = b.Subscribe(func(context.Context) { calls++; unsubA() })

	b.Notify(ctx)

	// Whichever handler runs first removes the other one and stays subscribed.
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, b.Len())

	b.Notify(ctx)
	assert.Equal(t, 2, calls)
}

func TestBus_ReentrantNotifyCoalesces(t *testing.T) {
	ctx := context.Background()
	b := New()

	var first, second int
	b.Subscribe(func(ctx context.Context) {
		first++
		if first == 1 {
			// A handler that mutates state and announces it again.
			b.Notify(ctx)
			b.Notify(ctx)
		}
	})
	b.Subscribe(func(context.Context) { second++ })

	b.Notify(ctx)

	assert.Equal(t, 2, first, "nested notifications collapse into one extra round")
	assert.Equal(t, 2, second)
}

func TestBus_RunawayHandlerIsBounded(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))
	b := New()

	var calls int
	b.Subscribe(func(ctx context.Context) {
		calls++
		b.Notify(ctx)
	})

	b.Notify(ctx)

	assert.Equal(t, maxRounds, calls)
	assert.Equal(t, 1, logs.Len())

	// The bus is usable again afterwards.
	calls = 0
	b.Notify(ctx)
	assert.Equal(t, maxRounds, calls)
}

func TestBus_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	b := New()

	var calls atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := b.Subscribe(func(context.Context) { calls.Add(1) })
			for range 50 {
				b.Notify(ctx)
			}
			unsub()
		}()
	}
	wg.Wait()

	assert.Zero(t, b.Len())
	assert.Positive(t, calls.Load())
}
