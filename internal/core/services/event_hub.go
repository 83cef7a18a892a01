package services

import (
	"sync"

	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"
)

type TaskEventType string

const (
	TaskEventCreated TaskEventType = "created"
	TaskEventUpdated TaskEventType = "updated"
	TaskEventDeleted TaskEventType = "deleted"
)

// TaskEvent describes one successful mutation. Task is nil for deletions.
type TaskEvent struct {
	Type TaskEventType `json:"type"`
	ID   string        `json:"id"`
	Task *domain.Task  `json:"task,omitempty"`
}

// EventHub fans task events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	logger *logger.Logger
}

type Subscription struct {
	C    <-chan TaskEvent
	ch   chan TaskEvent
	hub  *EventHub
	once sync.Once
}

func NewEventHub(buffer int, logger *logger.Logger) *EventHub {
	if buffer <= 0 {
		buffer = 1
	}
	return &EventHub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

func (h *EventHub) Subscribe() *Subscription {
	ch := make(chan TaskEvent, h.buffer)
	sub := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	h.logger.Infow("event_hub_subscribe", "subscribers", count)
	return sub
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		delete(h.subs, s)
		close(s.ch)
		count := len(h.subs)
		h.mu.Unlock()
		h.logger.Infow("event_hub_unsubscribe", "subscribers", count)
	})
}

func (h *EventHub) Publish(ev TaskEvent) {
	if h == nil {
		return
	}
	if ev.Task != nil {
		snapshot := *ev.Task
		ev.Task = &snapshot
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warnw("event_hub_dropped", "type", ev.Type, "id", ev.ID)
		}
	}
}

func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
