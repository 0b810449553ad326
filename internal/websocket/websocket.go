package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/models"
)

// Message types sent to portal clients
const (
	TypeSummary            = "summary"
	TypeSelection          = "selection"
	TypeRegistrationClosed = "registration_closed"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // portal is served to phones on the local network
	},
}

// SummaryProvider supplies the statistics sent to newly connected clients
type SummaryProvider interface {
	Summary(ctx context.Context) models.Summary
}

// Hub maintains the set of active clients and broadcasts messages to the clients.
// Only the run loop sends on or closes a client's send channel.
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	stats      SummaryProvider
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

type directMessage struct {
	client  *Client
	message models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, stats SummaryProvider) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		direct:     make(chan directMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stats:      stats,
	}
}

// Start begins the hub's main loop in a goroutine. The loop stops and
// disconnects every client when ctx is cancelled.
func (h *Hub) Start(ctx context.Context) {
	go h.run(ctx)
}

// Done is closed once the hub has stopped
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// run handles client registration/unregistration and message delivery
func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			close(h.done)
			h.log.Debug("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

			// New clients get the current statistics straight away
			go h.sendSummary(client)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case dm := <-h.direct:
			h.mutex.RLock()
			if h.clients[dm.client] {
				select {
				case dm.client.send <- dm.message:
				default:
				}
			}
			h.mutex.RUnlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go h.remove(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// sendSummary computes the summary outside the run loop and hands it back
// to the loop for delivery, so a client gone in the meantime is skipped.
func (h *Hub) sendSummary(client *Client) {
	summary := h.stats.Summary(context.Background())
	select {
	case h.direct <- directMessage{client: client, message: models.WSMessage{Type: TypeSummary, Payload: summary}}:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a message to all connected clients. It is a no-op
// once the hub has stopped.
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	select {
	case h.broadcast <- models.WSMessage{Type: msgType, Payload: payload}:
	case <-h.done:
	}
}

// BroadcastSummary implements services.Broadcaster
func (h *Hub) BroadcastSummary(summary models.Summary) {
	h.BroadcastMessage(TypeSummary, summary)
}

// BroadcastSelection implements services.Broadcaster
func (h *Hub) BroadcastSelection(result models.SelectionResult) {
	h.BroadcastMessage(TypeSelection, result)
}

// BroadcastRegistrationClosed implements services.Broadcaster
func (h *Hub) BroadcastRegistrationClosed(summary models.Summary) {
	h.BroadcastMessage(TypeRegistrationClosed, summary)
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		// Clients may ask for a fresh summary; anything else is ignored
		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil && msg.Type == TypeSummary {
			c.hub.sendSummary(c)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// StartSummaryTicker periodically re-sends the summary until ctx is cancelled
func (h *Hub) StartSummaryTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Summary ticker stopped")
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			h.BroadcastSummary(h.stats.Summary(ctx))
		}
	}
}
