package pubsub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
)

// NotificationEvent is what the hub fans out to live listeners when a
// notification row is written.
type NotificationEvent struct {
	Notification *models.Notification `json:"notification"`
	UnreadCount  int64                `json:"unread_count"`
}

// Hub fans notification events out to the user's open websocket streams.
// Delivery is best-effort: a slow listener drops events rather than blocking
// the writer.
type Hub struct {
	subscribers map[uuid.UUID][]chan NotificationEvent
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID][]chan NotificationEvent),
	}
}

// Subscribe registers a listener channel for a user.
func (h *Hub) Subscribe(userID uuid.UUID, ch chan NotificationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribers[userID] = append(h.subscribers[userID], ch)
}

// Unsubscribe removes a listener channel for a user.
func (h *Hub) Unsubscribe(userID uuid.UUID, ch chan NotificationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[userID]
	for i, sub := range subs {
		if sub == ch {
			h.subscribers[userID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(h.subscribers[userID]) == 0 {
		delete(h.subscribers, userID)
	}
}

// Broadcast sends an event to every listener of a user.
func (h *Hub) Broadcast(userID uuid.UUID, event NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			// Listener is not keeping up, drop.
		}
	}
}
