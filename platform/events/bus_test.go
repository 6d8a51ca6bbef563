package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"chalkstone_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type pinged struct {
	BaseEvent
}

func (pinged) EventName() string { return "test.pinged" }

func TestPublishRunsAllHandlers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewInMemoryBus(logger.Nop())
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error {
			calls.Add(1)
			return nil
		}))
	}

	bus.Publish(context.Background(), pinged{BaseEvent: NewBaseEvent()})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestPublishSurvivesCancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewInMemoryBus(logger.Nop())
	var sawCancel atomic.Bool
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, _ Event) error {
		sawCancel.Store(ctx.Err() != nil)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pinged{})
	bus.Wait()

	assert.False(t, sawCancel.Load())
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	first := errors.New("first")
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { return first }))
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { panic("boom") }))

	err := bus.PublishSync(context.Background(), pinged{})

	assert.ErrorIs(t, err, first)
	assert.ErrorContains(t, err, "panicked")
}

func TestPublishWithoutSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewInMemoryBus(logger.Nop())
	bus.Publish(context.Background(), pinged{})
	assert.NoError(t, bus.PublishSync(context.Background(), pinged{}))
}
