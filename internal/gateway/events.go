package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Broker fans events out to local subscribers without blocking the emitter.
type Broker struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// NewBroker constructs an empty event broker.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		logger:      logger,
		subscribers: make(map[string]chan Event),
	}
}

// Emit stamps and publishes one event. Subscribers with full buffers drop
// the event rather than stalling command handling.
func (b *Broker) Emit(event Event) {
	if event.ID == "" {
		event.ID = xid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warn("event dropped: subscriber buffer full",
				"subscriber", id, "event_type", string(event.Type))
		}
	}
}

// Subscribe registers a buffered local subscription and returns its id and
// receive channel. The caller must Unsubscribe with the same id.
func (b *Broker) Subscribe(bufSize int) (string, <-chan Event) {
	if bufSize <= 0 {
		bufSize = 64
	}
	id := xid.New().String()
	ch := make(chan Event, bufSize)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}
