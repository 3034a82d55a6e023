package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"vltweb/internal/lib/logger/sl"
)

// Client is one open event-stream connection. Frames are delivered on Ch
// already formatted for the wire.
type Client struct {
	ID string
	Ch chan []byte
}

// Hub fans out server-sent events to every connected client.
type Hub struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]*Client),
	}
}

// Register creates a client with a buffered channel. The caller must
// Unregister it when the connection closes.
func (h *Hub) Register() *Client {
	c := &Client{
		ID: uuid.NewString(),
		Ch: make(chan []byte, 16),
	}

	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.log.Debug("sse client connected", slog.String("client_id", c.ID))

	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Ch)
	}
	h.mu.Unlock()

	h.log.Debug("sse client disconnected", slog.String("client_id", c.ID))
}

// Broadcast sends one named event with a JSON payload to every client.
// Slow clients are skipped rather than blocking the hub.
func (h *Hub) Broadcast(event string, payload any) {
	const op = "sse.Hub.Broadcast"

	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal event payload", sl.Err(fmt.Errorf("%s: %w", op, err)))
		return
	}

	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data))

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		select {
		case c.Ch <- frame:
		default:
			h.log.Warn("dropping event for slow sse client", slog.String("client_id", c.ID))
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}
