// Package broadcast fans room snapshots out to channel subscribers. Delivery
// is fire-and-forget: a slow subscriber drops messages, it never blocks the
// room that published.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Broadcaster is the sink rooms publish their snapshots to.
type Broadcaster interface {
	Publish(topic string, payload any)
}

// Topic names the logical channel for a room.
func Topic(roomCode string) string {
	return "game:lobby:" + roomCode
}

// SubscriberBuffer is the per-subscriber channel depth before drops start.
const SubscriberBuffer = 16

// Subscriber receives every payload published to its topic, JSON-encoded.
type Subscriber struct {
	C     chan []byte
	topic string
}

// Hub is the in-process Broadcaster: per-topic subscriber sets behind one
// lock, payload marshaled once per publish.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
	log  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscriber]struct{}),
		log:  log,
	}
}

// Subscribe registers a new subscriber on the topic. Spectators and players
// subscribe the same way; the hub does not know about identities.
func (h *Hub) Subscribe(topic string) *Subscriber {
	sub := &Subscriber{C: make(chan []byte, SubscriberBuffer), topic: topic}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.topic]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.topic)
	}
	close(sub.C)
}

// SubscriberCount returns how many subscribers a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Publish sends the payload to every subscriber of the topic. Messages to
// subscribers with a full buffer are dropped.
func (h *Hub) Publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("broadcast marshal failed", "topic", topic, "err", err)
		return
	}

	// Sends are non-blocking, so holding the read lock keeps Unsubscribe's
	// channel close from racing a send without ever stalling a publisher.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[topic] {
		select {
		case sub.C <- data:
		default:
			h.log.Warn("dropping broadcast for slow subscriber", "topic", topic)
		}
	}
}
