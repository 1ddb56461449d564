package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action describes what happened to an entity
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is one change notification, scoped to a tenant
type Event struct {
	Entity   string    `json:"entity"`
	Action   Action    `json:"action"`
	EntityID uuid.UUID `json:"entityId"`
	TenantID uuid.UUID `json:"-"`
	At       time.Time `json:"at"`
}

// Feed is an in-process publish/subscribe change feed. Subscribers get
// events for their tenant only. Slow subscribers drop events rather than
// block publishers.
type Feed struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan Event]struct{}
}

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{
		subs: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Publish delivers an event to all subscribers of its tenant
func (f *Feed) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subs[event.TenantID] {
		select {
		case ch <- event:
		default:
			// subscriber buffer full, drop
		}
	}
}

// Subscribe registers a listener for one tenant's events. The returned
// cancel function must be called to release the subscription.
func (f *Feed) Subscribe(tenantID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 64)

	f.mu.Lock()
	if f.subs[tenantID] == nil {
		f.subs[tenantID] = make(map[chan Event]struct{})
	}
	f.subs[tenantID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if set, ok := f.subs[tenantID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(f.subs, tenantID)
			}
		}
		f.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// SubscriberCount reports how many listeners a tenant has
func (f *Feed) SubscriberCount(tenantID uuid.UUID) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[tenantID])
}
