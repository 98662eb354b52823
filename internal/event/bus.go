package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{
		subscribers: make(map[string]chan Event),
	}
}

// Emit publishes a typed event with a fresh ID and timestamp.
func (b *InMemoryBus) Emit(t Type, payload interface{}) {
	b.Publish(Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (b *InMemoryBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		// Non-blocking send so a slow subscriber never stalls a cart mutation
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *InMemoryBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, 100) // Buffer to handle bursts
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, exists := b.subscribers[id]; exists {
			close(ch)
			delete(b.subscribers, id)
		}
	}

	return ch, unsubscribe
}
