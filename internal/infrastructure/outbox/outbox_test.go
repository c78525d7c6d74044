package outbox

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ name, id string }

func (e testEvent) EventName() string   { return e.name }
func (e testEvent) AggregateID() string { return e.id }

func TestBusFansOutSynchronously(t *testing.T) {
	bus := NewBus(nil)
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("order.paid", func(ctx context.Context, e domoutbox.Event) error {
			calls.Add(1)
			return nil
		})
	}
	var other atomic.Bool
	bus.Subscribe("order.canceled", func(ctx context.Context, e domoutbox.Event) error {
		other.Store(true)
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "order.paid", id: "1"}))
	assert.Equal(t, int32(3), calls.Load())
	assert.False(t, other.Load())
}

func TestBusWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), testEvent{name: "order.created"}))
	assert.NoError(t, bus.Publish(context.Background(), nil))
}

func TestBusCollectsHandlerFailures(t *testing.T) {
	bus := NewBus(nil)
	boom := errors.New("boom")
	var ran atomic.Bool

	bus.Subscribe("order.paid", func(ctx context.Context, e domoutbox.Event) error { return boom })
	bus.Subscribe("order.paid", func(ctx context.Context, e domoutbox.Event) error { panic("kaput") })
	bus.Subscribe("order.paid", func(ctx context.Context, e domoutbox.Event) error {
		ran.Store(true)
		return nil
	})

	err := bus.Publish(context.Background(), testEvent{name: "order.paid"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "panicked")
	assert.True(t, ran.Load())
}
