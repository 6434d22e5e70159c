package sse

import (
	"sync"
)

const (
	// EventAttendanceChanged is published after every write to a workspace's attendance log
	EventAttendanceChanged = "attendance.changed"
)

// Event is a server-sent event for one workspace's subscribers
type Event struct {
	WorkspaceID string
	Event       string
	Data        interface{}
}

// Hub fans events out to the subscribers of each workspace
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber and returns its channel and the cleanup func
func (h *Hub) Subscribe(workspaceID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[workspaceID] == nil {
		h.subscribers[workspaceID] = make(map[chan Event]struct{})
	}
	h.subscribers[workspaceID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[workspaceID], ch)
			close(ch)
			if len(h.subscribers[workspaceID]) == 0 {
				delete(h.subscribers, workspaceID)
			}
		})
	}

	return ch, cleanup
}

// Publish never blocks: a subscriber with a full buffer misses the event
func (h *Hub) Publish(workspaceID string, event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.WorkspaceID = workspaceID
	for ch := range h.subscribers[workspaceID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(workspaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[workspaceID])
}
