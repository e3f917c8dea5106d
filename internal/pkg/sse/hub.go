package sse

import (
	"context"
	"sync"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
)

// Hub manages dashboard SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan event.Event]struct{}
	bufferSize  int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan event.Event]struct{}),
		bufferSize:  16,
	}
}

// Subscribe registers a new subscriber for a user and returns the event channel and cleanup function.
// A user may hold several subscriptions, one per open dashboard tab.
func (h *Hub) Subscribe(userID string) (<-chan event.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan event.Event, h.bufferSize)

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan event.Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[userID], ch)
			close(ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
		})
	}

	return ch, cleanup
}

// Broadcast sends an event to every subscriber
func (h *Hub) Broadcast(e event.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, subs := range h.subscribers {
		for ch := range subs {
			select {
			case ch <- e:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// Dispatch implements event.Dispatcher for this process's dashboards.
func (h *Hub) Dispatch(_ context.Context, events ...event.Event) {
	for _, e := range events {
		h.Broadcast(e)
	}
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[userID]; ok {
		return len(subs)
	}
	return 0
}

// TotalSubscribers returns the total number of active subscribers across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
