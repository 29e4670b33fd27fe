package sandbox

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/worklane/worklane-client/internal/api"
	"go.uber.org/zap"
)

const clientSendBufferSize = 32

// hub tracks the live websocket connections per room and per account. Rooms
// drive message broadcast, accounts drive the online-status endpoint: an
// account is online while it holds at least one open connection.
type hub struct {
	mu          sync.RWMutex
	rooms       map[string]map[*roomClient]bool
	connections map[int64]int
}

func newHub() *hub {
	return &hub{
		rooms:       make(map[string]map[*roomClient]bool),
		connections: make(map[int64]int),
	}
}

type roomClient struct {
	conn      *websocket.Conn
	send      chan api.Message
	roomID    string
	accountID int64
	logger    *zap.Logger
}

func (h *hub) register(client *roomClient) {
	h.mu.Lock()
	if _, ok := h.rooms[client.roomID]; !ok {
		h.rooms[client.roomID] = make(map[*roomClient]bool)
	}
	h.rooms[client.roomID][client] = true
	h.connections[client.accountID]++
	h.mu.Unlock()
}

func (h *hub) unregister(client *roomClient) {
	h.mu.Lock()
	if clients, ok := h.rooms[client.roomID]; ok {
		if clients[client] {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.rooms, client.roomID)
		}
	}
	if h.connections[client.accountID] > 0 {
		h.connections[client.accountID]--
		if h.connections[client.accountID] == 0 {
			delete(h.connections, client.accountID)
		}
	}
	h.mu.Unlock()
}

// broadcast echoes the envelope to every subscriber of the room, the sender
// included. Slow subscribers are skipped rather than blocking the room. The
// sends stay under the read lock: unregister closes send channels under the
// write lock, so a teardown cannot interleave with an in-flight broadcast.
func (h *hub) broadcast(roomID string, message api.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- message:
		default:
			client.logger.Warn("dropping message for slow subscriber",
				zap.String("roomId", roomID),
				zap.Int64("accountId", client.accountID))
		}
	}
}

// online reports whether the account holds any open connection right now.
func (h *hub) online(accountID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connections[accountID] > 0
}

func (c *roomClient) writePump() {
	for message := range c.send {
		if err := c.conn.WriteJSON(message); err != nil {
			return
		}
	}
}
