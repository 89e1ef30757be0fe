package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"whisper-feed/internal/broker"
)

// Hub maintains the set of active clients. Subscription state lives on the
// clients themselves; the hub only tracks connections so they can be torn
// down together.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Registry that owns topic subscriptions.
	Registry *broker.Registry

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub(registry *broker.Registry) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
		Registry:   registry,
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			log.Printf("WebSocket Client registered for User %s. Total connections for user: %d", client.UserID, len(h.Clients[client.UserID]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					client.closeSubscriptions()
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
						log.Printf("WebSocket Client unregistered. User %s has no more connections.", client.UserID)
					} else {
						log.Printf("WebSocket Client unregistered for User %s. Remaining connections: %d", client.UserID, len(userClients))
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// ConnectionCount reports the number of live connections across all users.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, userClients := range h.Clients {
		total += len(userClients)
	}
	return total
}
