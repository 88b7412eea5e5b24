// Package notify is the in-process pub/sub bus for notification-worthy
// economic events. Delivery is best-effort and never blocks the
// calculation path: a subscriber that falls behind drops events.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Event types published by the engine.
const (
	RevenueGenerated = "revenue-generated"
	ExpenseIncurred  = "expense-incurred"
	CycleCompleted   = "cycle-completed"
)

// Event is one notification-worthy occurrence.
type Event struct {
	Type        string    `json:"type" db:"type"`
	Amount      float64   `json:"amount" db:"amount"`
	Description string    `json:"description" db:"description"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

// Bus fans events out to subscribers over buffered channels.
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	closed bool

	// Recent events ring, for API consumers that poll instead of subscribe.
	recent []Event
}

const (
	subscriberBuffer = 64
	recentKeep       = 200
)

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel receiving future events. The channel is
// closed when the bus shuts down.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers an event to all subscribers without blocking. A full
// subscriber buffer drops the event for that subscriber only.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.recent = append(b.recent, evt)
	if len(b.recent) > recentKeep {
		b.recent = b.recent[len(b.recent)-recentKeep:]
	}

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			slog.Debug("notify subscriber lagging, event dropped", "type", evt.Type)
		}
	}
}

// Recent returns up to limit of the most recent events, oldest first.
func (b *Bus) Recent(limit int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := 0
	if limit > 0 && len(b.recent) > limit {
		start = len(b.recent) - limit
	}
	out := make([]Event, len(b.recent)-start)
	copy(out, b.recent[start:])
	return out
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
