// Package bus carries fire-and-forget signals between the background worker
// and the UI, standing in for cross-context messaging: reload the list,
// recount the badge.
package bus

import "sync"

// Event is a broadcast signal type.
type Event int

const (
	// ReloadPRs asks the UI to re-run the reconciler.
	ReloadPRs Event = iota
	// UpdateBadge asks for a badge recount.
	UpdateBadge
)

// Bus fans events out to every subscriber. Publishing never blocks: a
// subscriber that has fallen behind misses the event, which is acceptable
// for signals that only mean "go look again."
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 8)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
