package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishRunsEverySubscriber(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
			calls.Add(1)
			return nil
		}))
	}

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if calls.Load() != 3 {
		t.Fatalf("expected 3 handler calls, got %d", calls.Load())
	}
}

func TestPublishSurvivesCanceledContext(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var sawCancel atomic.Bool
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, _ Event) error {
		time.Sleep(5 * time.Millisecond)
		sawCancel.Store(ctx.Err() != nil)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent()})
	cancel()
	bus.Wait()

	if sawCancel.Load() {
		t.Fatal("expected handler context to be detached from caller cancellation")
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	errA := errors.New("a")
	errB := errors.New("b")
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return errA }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return errB }))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined errors, got %v", err)
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()
	if err := bus.PublishSync(context.Background(), pingEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
