// Package websocket streams task lifecycle events to connected board
// clients so open boards refresh without polling.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"kanban-backend/pkg/logger"
)

// Event names published by the task handlers.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

type Event struct {
	Event  string `json:"event"`
	TaskID int    `json:"task_id"`
}

type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub fans task events out to every connected client. All client map
// mutations happen on the Run goroutine; handlers only send on channels.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.conn.Close()
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				client.mu.Lock()
				err := client.conn.WriteMessage(websocket.TextMessage, message)
				client.mu.Unlock()
				if err != nil {
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
		}
	}
}

// Publish broadcasts a task event. Safe on a nil hub so handlers under test
// need no wiring.
func (h *Hub) Publish(event string, taskID int) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(Event{Event: event, TaskID: taskID})
	if err != nil {
		logger.ErrorLogger.Error("encode board event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// A stalled hub must never block a request handler.
		logger.ErrorLogger.Warn("board event dropped, broadcast buffer full",
			zap.String("event", event), zap.Int("task_id", taskID))
	}
}

// HandleConn is the fiber websocket handler for /ws/board. Inbound frames
// are drained and discarded; the stream is server-to-client only.
func (h *Hub) HandleConn(conn *websocket.Conn) {
	client := &Client{conn: conn}
	h.register <- client
	defer func() { h.unregister <- client }()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
