package controller

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// AssignmentEvent is pushed to every dashboard connection when an
// assignment batch commits.
type AssignmentEvent struct {
	EmployeeID   uint      `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Role         string    `json:"role"`
	SuspectIDs   []uint    `json:"suspect_ids"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// AssignmentHub fans assignment events out to connected dashboards.
type AssignmentHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewAssignmentHub() *AssignmentHub {
	return &AssignmentHub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Broadcast sends the event to every registered connection, dropping
// connections whose writes fail.
func (h *AssignmentHub) Broadcast(event AssignmentEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("WS: dropping dead connection: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *AssignmentHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *AssignmentHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// HandleAssignmentFeed keeps the connection registered until the client
// goes away. Inbound messages are only read to detect the close.
func (h *AssignmentHub) HandleAssignmentFeed(c *websocket.Conn) {
	defer c.Close()

	h.register(c)
	defer h.unregister(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
