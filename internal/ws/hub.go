package ws

import (
	"log"
	"sync"
)

// Hub fans match-ready events out to subscribers. Clients subscribe to
// one job id and receive events for that job only.
type Hub struct {
	clients map[string]map[*Client]bool
	mutex   sync.RWMutex
	logger  *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
		logger:  logger,
	}
}

func (h *Hub) Register(topic string, client *Client) {
	if h == nil || client == nil || topic == "" {
		return
	}
	h.mutex.Lock()
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[*Client]bool)
	}
	h.clients[topic][client] = true
	total := len(h.clients[topic])
	h.mutex.Unlock()

	if h.logger != nil {
		h.logger.Printf("WS connected | topic=%s subscribers=%d", topic, total)
	}
}

func (h *Hub) Unregister(topic string, client *Client) {
	if h == nil || client == nil {
		return
	}
	h.mutex.Lock()
	if subs, ok := h.clients[topic]; ok {
		if subs[client] {
			delete(subs, client)
			// Signal WritePump through done rather than closing send:
			// Publish may still hold a pre-removal snapshot, and a send
			// on a closed channel panics.
			close(client.done)
		}
		if len(subs) == 0 {
			delete(h.clients, topic)
		}
	}
	h.mutex.Unlock()
}

// Publish delivers a message to every subscriber of the topic. Slow
// subscribers are dropped rather than blocking the publisher.
func (h *Hub) Publish(topic string, message []byte) {
	if h == nil {
		return
	}
	h.mutex.RLock()
	subscribers := make([]*Client, 0, len(h.clients[topic]))
	for c := range h.clients[topic] {
		subscribers = append(subscribers, c)
	}
	h.mutex.RUnlock()

	for _, client := range subscribers {
		select {
		case client.send <- message:
		default:
			h.Unregister(topic, client)
			if h.logger != nil {
				h.logger.Printf("WS subscriber dropped | topic=%s reason=buffer_full", topic)
			}
		}
	}
}

func (h *Hub) SubscriberCount(topic string) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[topic])
}
