// Package websocket pushes catalog changes to connected clients.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pageza/drinkbook/backend/internal/model"
	"go.uber.org/zap"
)

// Event types sent to clients
const (
	EventRecipeCreated = "recipe_created"
	EventRecipeUpdated = "recipe_updated"
	EventRecipeDeleted = "recipe_deleted"
)

// Event is one change to the catalog.
type Event struct {
	Type     string        `json:"type"`
	RecipeID string        `json:"recipe_id"`
	Recipe   *model.Recipe `json:"recipe,omitempty"`
	Time     int64         `json:"time"`
}

// Client is one connected socket.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan Event
}

// Hub fans events out to every connected client.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]bool

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates a hub. An empty origins list accepts any origin.
func NewHub(origins []string, logger *zap.Logger) *Hub {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(allowed) == 0 || allowed[origin]
		},
	}
	return h
}

// Run is the hub loop. It returns when ctx is done, after closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", zap.String("client_id", c.ID))

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug("websocket client unregistered", zap.String("client_id", c.ID))

		case ev := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// Slow consumer; drop it.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event. It never blocks the caller; when the queue is
// full the event is dropped and logged.
func (h *Hub) Publish(eventType string, recipeID string, recipe *model.Recipe) {
	ev := Event{Type: eventType, RecipeID: recipeID, Recipe: recipe, Time: time.Now().Unix()}
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.String("type", eventType), zap.String("recipe_id", recipeID))
	}
}

// Count is the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the socket to the hub.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan Event, 32),
	}

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	case <-c.Request.Context().Done():
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
