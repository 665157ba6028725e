// Package realtime fans committed mutations out to every device watching
// a session.
//
// The hub is a broadcaster only. It carries no write authority and gives
// no delivery guarantee beyond best effort: a subscriber that falls
// behind is cut off and must re-fetch the full session state before
// resuming, which is also the reconnect contract.
package realtime

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventType identifies which part of the session an event touched.
type EventType string

const (
	EventItem      EventType = "item"
	EventClaim     EventType = "claim"
	EventMember    EventType = "member"
	EventLifecycle EventType = "lifecycle"
)

// Event is one committed mutation, pushed to all subscribers of a session.
// The payload carries enough state (e.g. the full claimant list of the
// touched item) for receivers to reconcile without re-fetching.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	Payload   any       `json:"payload"`
}

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tabshare_realtime_dropped_events_total",
	Help: "Events not delivered because a subscriber's buffer was full.",
})

// subscriberBuffer bounds how far a subscriber may fall behind before
// the hub stops delivering to it.
const subscriberBuffer = 32

// Subscription is one device's view of a session's event stream.
type Subscription struct {
	hub       *Hub
	sessionID string
	ch        chan Event
	closeOnce sync.Once
}

// Events returns the channel delivering this subscription's events.
// The channel is closed when the subscription is closed or dropped.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub tracks subscribers per session and broadcasts events to them.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber for a session's events.
func (h *Hub) Subscribe(sessionID string) *Subscription {
	sub := &Subscription{
		hub:       h,
		sessionID: sessionID,
		ch:        make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*Subscription]struct{})
	}
	h.subs[sessionID][sub] = struct{}{}
	return sub
}

// Publish delivers an event to every subscriber of its session.
// Sends never block: a subscriber whose buffer is full is dropped, since
// it can no longer trust its incremental view anyway.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	var stale []*Subscription
	for sub := range h.subs[event.SessionID] {
		select {
		case sub.ch <- event:
		default:
			droppedEvents.Inc()
			stale = append(stale, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stale {
		h.unsubscribe(sub)
	}
}

// SubscriberCount reports how many devices are watching a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[sub.sessionID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, sub.sessionID)
			}
		}
	}
	h.mu.Unlock()

	sub.closeOnce.Do(func() { close(sub.ch) })
}
