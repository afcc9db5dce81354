package realtime

import (
	"sync"
)

// Topic names raw collections surfaces can watch.
type Topic string

const (
	TopicNotifications Topic = "notifications"
	TopicSensor        Topic = "sensor"
	TopicControl       Topic = "control"
	TopicDesktop       Topic = "desktop"
)

// Event is one published change: the topic plus a snapshot payload.
// Payload is whatever the publisher projected (full list, latest reading, ...).
type Event struct {
	Topic   Topic `json:"topic"`
	Payload any   `json:"payload"`
}

const subscriberBuffer = 16

// Hub fans out collection changes to independently mounted subscribers.
// Each surface subscribes directly; there is no shared view state here,
// only delivery. Slow subscribers get events dropped rather than blocking
// the publisher.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[int]chan Event)}
}

// Subscribe registers a subscriber for the given topics and returns the
// delivery channel plus a cancel function. Cancel must be called on view
// teardown; it closes the channel.
func (h *Hub) Subscribe(topics ...Topic) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = make(map[int]chan Event)
		}
		h.subs[t][id] = ch
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			for _, t := range topics {
				delete(h.subs[t], id)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the topic. A subscriber
// whose buffer is full misses this event; it will converge on the next
// snapshot since every payload is a full projection, not a delta.
func (h *Hub) Publish(topic Topic, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- Event{Topic: topic, Payload: payload}:
		default:
		}
	}
}

// SubscriberCount reports active subscribers on a topic.
func (h *Hub) SubscriberCount(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
