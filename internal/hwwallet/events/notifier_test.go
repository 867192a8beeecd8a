package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/hwwallet/events"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	notifier := events.New(4)
	defer notifier.Shutdown()

	first, unsubscribeFirst := notifier.Subscribe()
	defer unsubscribeFirst()
	second, unsubscribeSecond := notifier.Subscribe()
	defer unsubscribeSecond()

	notifier.Publish(events.Event{Type: events.TypeDeviceConnected, DeviceID: "dev-1"})

	assert.Equal(t, "dev-1", (<-first).DeviceID)
	assert.Equal(t, "dev-1", (<-second).DeviceID)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	notifier := events.New(1)
	defer notifier.Shutdown()

	slow, unsubscribeSlow := notifier.Subscribe()
	defer unsubscribeSlow()
	fast, unsubscribeFast := notifier.Subscribe()
	defer unsubscribeFast()

	// The slow subscriber's buffer holds one event; the rest must be dropped
	// without stalling the publisher.
	for i := 0; i < 3; i++ {
		notifier.Publish(events.Event{Type: events.TypeSigningCompleted, RequestID: uint64(i + 1)})
		<-fast
	}

	event := <-slow
	assert.Equal(t, uint64(1), event.RequestID)

	select {
	case extra := <-slow:
		t.Fatalf("expected dropped events, got %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	notifier := events.New(4)
	defer notifier.Shutdown()

	ch, unsubscribe := notifier.Subscribe()
	unsubscribe()
	unsubscribe() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	notifier.Publish(events.Event{Type: events.TypeDeviceConnected})
}

func TestShutdownClosesAllSubscribers(t *testing.T) {
	notifier := events.New(4)

	ch, _ := notifier.Subscribe()

	notifier.Shutdown()
	notifier.Shutdown() // idempotent

	_, open := <-ch
	require.False(t, open)

	// Post-shutdown subscribers get an already closed channel.
	late, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	_, open = <-late
	assert.False(t, open)

	notifier.Publish(events.Event{Type: events.TypeDeviceConnected})
}
