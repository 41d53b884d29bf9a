package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/gorilla/websocket"
)

// EventOrderCreated is pushed to every console when an order is stored
const EventOrderCreated = "order_created"

type OrderSummary struct {
	ID           uint      `json:"id"`
	CustomerName string    `json:"customer_name"`
	Total        float64   `json:"total"`
	Items        int       `json:"items"`
	CreatedAt    time.Time `json:"created_at"`
}

type Event struct {
	Type  string       `json:"type"`
	Order OrderSummary `json:"order"`
}

// Hub fans order events out to connected admin consoles
type Hub struct {
	clients   map[*Client]bool
	stopped   bool
	broadcast chan []byte
	stop      chan struct{}
	stopOnce  sync.Once
	upgrader  websocket.Upgrader

	mu sync.RWMutex
}

// NewHub builds a hub that accepts upgrades from allowedOrigins. An empty list
// accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}

	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan []byte, 256),
		stop:      make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(origins) == 0 || origin == "" {
					return true
				}
				return origins[origin]
			},
		},
	}
}

// Run fans out broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range slow {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"subject": client.subject,
				})
				h.remove(client)
			}

		case <-h.stop:
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
	close(client.send)
	logger.Info("Order feed client unregistered", map[string]interface{}{
		"subject":   client.subject,
		"remaining": len(h.clients),
	})
}

// Stop disconnects every client and ends Run. Later upgrades are closed
// immediately.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		h.stopped = true
		for client := range h.clients {
			delete(h.clients, client)
			close(client.send)
		}
		h.mu.Unlock()
		close(h.stop)
	})
}

// add registers client unless the hub has stopped
func (h *Hub) add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[client] = true
	logger.Info("Order feed client registered", map[string]interface{}{
		"subject": client.subject,
		"clients": len(h.clients),
	})
	return true
}

// ClientCount is the number of registered consoles
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the connection to the feed
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, subject string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		subject: subject,
	}
	if !h.add(client) {
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// NotifyOrderCreated queues an order_created event. It never blocks the
// caller; events are dropped when the broadcast queue is full.
func (h *Hub) NotifyOrderCreated(order *model.Order) {
	data, err := json.Marshal(Event{
		Type: EventOrderCreated,
		Order: OrderSummary{
			ID:           order.ID,
			CustomerName: order.Customer.Name,
			Total:        order.Total,
			Items:        len(order.Items),
			CreatedAt:    order.CreatedAt,
		},
	})
	if err != nil {
		logger.Error("Failed to marshal order event", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, order event dropped", map[string]interface{}{
			"order_id": order.ID,
		})
	}
}
