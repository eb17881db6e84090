package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/model"
)

// Hub fans broadcast messages out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu    sync.RWMutex
	count int

	logger logrus.FieldLogger
}

// NewHub creates an idle hub. Call Run to start it.
func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// slow consumer
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Broadcast queues a message for every client. It drops the message when
// the hub is backed up.
func (h *Hub) Broadcast(data []byte) bool {
	select {
	case h.broadcast <- data:
		return true
	default:
		h.logger.Warn("broadcast queue full, dropping message")
		return false
	}
}

type exportMessage struct {
	Type  string            `json:"type"`
	Event model.ExportEvent `json:"event"`
}

// Name identifies the notifier in logs.
func (h *Hub) Name() string {
	return "websocket"
}

// NotifyExport broadcasts a completed export to connected clients.
func (h *Hub) NotifyExport(_ context.Context, event model.ExportEvent) error {
	data, err := json.Marshal(exportMessage{Type: "export.completed", Event: event})
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}
