package messaging

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learning-platform/internal/domain/shared"
)

func newSyncBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	return NewInMemoryEventBus(Config{
		AsyncMode:     false,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		EnableMetrics: true,
	})
}

func TestPublish_DeliversToSubscriber(t *testing.T) {
	bus := newSyncBus(t)
	defer bus.Close()

	var received []shared.Event
	err := bus.Subscribe(shared.EventProgressUpdated, func(e shared.Event) error {
		received = append(received, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(shared.NewProgressUpdatedEvent("1:2", 1, 2, 40)))
	require.NoError(t, bus.Publish(shared.NewProgressUpdatedEvent("1:2", 1, 2, 80)))

	// Событие другого типа не должно попасть в этот обработчик.
	require.NoError(t, bus.Publish(shared.NewCourseCompletedEvent("1:2", 1, 2)))

	require.Len(t, received, 2)
	assert.Equal(t, shared.EventProgressUpdated, received[0].EventType())
}

func TestSubscribeAll_ReceivesEveryType(t *testing.T) {
	bus := newSyncBus(t)
	defer bus.Close()

	var count int
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewProgressUpdatedEvent("1:2", 1, 2, 40)))
	require.NoError(t, bus.Publish(shared.NewSubscriptionChangedEvent(shared.EventSubscriptionCreated, "sub-1", 1, 3)))

	assert.Equal(t, 2, count)
}

func TestPublish_NilEvent(t *testing.T) {
	bus := newSyncBus(t)
	defer bus.Close()

	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
}

func TestSubscribe_NilHandler(t *testing.T) {
	bus := newSyncBus(t)
	defer bus.Close()

	assert.ErrorIs(t, bus.Subscribe(shared.EventProgressUpdated, nil), ErrNilHandler)
}

func TestPublish_AfterClose(t *testing.T) {
	bus := newSyncBus(t)
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewProgressUpdatedEvent("1:2", 1, 2, 40))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestPublish_HandlerPanicDoesNotPropagate(t *testing.T) {
	bus := newSyncBus(t)
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventProgressUpdated, func(e shared.Event) error {
		panic("boom")
	}))

	// Паника обработчика конвертируется в ошибку и логируется,
	// Publish завершается успешно.
	assert.NoError(t, bus.Publish(shared.NewProgressUpdatedEvent("1:2", 1, 2, 40)))
}

func TestPublish_Async(t *testing.T) {
	bus := NewInMemoryEventBus(Config{
		AsyncMode:      true,
		WorkerPoolSize: 4,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	var (
		mu    sync.Mutex
		count int
	)
	done := make(chan struct{})

	require.NoError(t, bus.Subscribe(shared.EventCourseCompleted, func(e shared.Event) error {
		mu.Lock()
		count++
		if count == 3 {
			close(done)
		}
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(shared.NewCourseCompletedEvent("1:2", 1, 2)))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not run in time")
	}

	require.NoError(t, bus.Close())
}

func TestMetrics_CountsPublishesAndFailures(t *testing.T) {
	bus := newSyncBus(t)
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventProgressUpdated, func(e shared.Event) error {
		return errors.New("handler failed")
	}))

	require.NoError(t, bus.Publish(shared.NewProgressUpdatedEvent("1:2", 1, 2, 40)))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.TotalHandlerExecs)
	assert.Equal(t, 0.0, snap.HandlerSuccessRate)
}
