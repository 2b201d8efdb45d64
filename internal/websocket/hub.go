package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
)

const (
	EventReviewCreated = "review.created"
	EventReviewDeleted = "review.deleted"

	sendBufferSize = 256
)

// Event is what every live-feed client receives.
type Event struct {
	Type   string        `json:"type"`
	Review *model.Review `json:"review,omitempty"`
	ID     string        `json:"id,omitempty"`
}

// Client is one live-feed connection.
type Client struct {
	Hub  *Hub
	Conn *Conn
	ID   string
	Send chan []byte
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *Conn) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		ID:   uuid.NewString(),
		Send: make(chan []byte, sendBufferSize),
	}
}

// Hub fans review events out to every connected client.
type Hub struct {
	clients map[*Client]bool
	stopped bool

	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes unregistrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"client_id": client.ID,
				})
				h.remove(client)
			}

		case <-h.done:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	logger.Info("Live feed client unregistered", map[string]interface{}{
		"client_id":         client.ID,
		"remaining_clients": len(h.clients),
	})
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds a client. Once the hub has stopped the client's send channel
// is closed right away so its write pump exits.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		close(client.Send)
		return
	}
	h.clients[client] = true
	logger.Info("Live feed client registered", map[string]interface{}{
		"client_id":     client.ID,
		"total_clients": len(h.clients),
	})
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReviewCreated broadcasts a new review.
func (h *Hub) ReviewCreated(review model.Review) {
	h.publish(Event{Type: EventReviewCreated, Review: &review})
}

// ReviewDeleted broadcasts a removed review id.
func (h *Hub) ReviewDeleted(id string) {
	h.publish(Event{Type: EventReviewDeleted, ID: id})
}

func (h *Hub) publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal live feed event", err, nil)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// 피드 메시지는 유실 허용
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": event.Type,
		})
	}
}
