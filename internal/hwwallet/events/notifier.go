package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const defaultBufferSize = 64

// Notifier fans lifecycle events out to subscribers. Delivery is best-effort:
// a subscriber whose buffer is full loses events instead of stalling the
// connection manager or the signing orchestrator.
type Notifier interface {
	// Subscribe registers a new subscriber and returns its event channel plus
	// an unsubscribe function. The channel is closed on unsubscribe and on
	// notifier shutdown.
	Subscribe() (<-chan Event, func())

	// Publish delivers an event to all current subscribers without blocking.
	Publish(event Event)

	// Shutdown closes all subscriber channels.
	Shutdown()
}

type notifier struct {
	mu          sync.Mutex
	subscribers map[uint64]chan Event
	nextID      uint64
	bufferSize  int
	closed      bool
}

// New creates a notifier whose subscriber channels buffer bufferSize events.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func New(bufferSize int) Notifier {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &notifier{
		subscribers: make(map[uint64]chan Event),
		bufferSize:  bufferSize,
	}
}

func (n *notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Event, n.bufferSize)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	id := n.nextID
	n.nextID++
	n.subscribers[id] = ch

	unsubscribe := func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		if sub, ok := n.subscribers[id]; ok {
			delete(n.subscribers, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}

func (n *notifier) Publish(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}

	for id, sub := range n.subscribers {
		select {
		case sub <- event:
		default:
			// Slow subscriber, drop rather than block the publisher.
			log.Debug().
				Uint64("subscriber_id", id).
				Str("event_type", string(event.Type)).
				Msg("Event dropped for slow subscriber")
		}
	}
}

func (n *notifier) Shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true

	for id, sub := range n.subscribers {
		delete(n.subscribers, id)
		close(sub)
	}
}
