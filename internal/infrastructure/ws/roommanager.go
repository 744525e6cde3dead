package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// RoomManager tracks the live subscriptions per room. A subscription's
// lifetime is bounded by its connection, not by the room: rooms are never
// created or destroyed here.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	upgrader websocket.Upgrader
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (m *RoomManager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return m.upgrader.Upgrade(w, r, nil)
}

func (m *RoomManager) AddClient(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs, ok := m.rooms[c.RoomID]
	if !ok {
		subs = make(map[*Client]struct{})
		m.rooms[c.RoomID] = subs
	}
	subs[c] = struct{}{}
}

func (m *RoomManager) RemoveClient(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if subs, ok := m.rooms[c.RoomID]; ok {
		if _, present := subs[c]; present {
			delete(subs, c)
			close(c.Message)
		}
		if len(subs) == 0 {
			delete(m.rooms, c.RoomID)
		}
	}
}

// Deliver hands the event to every live subscriber of its room. Best-effort
// per subscriber: a full send buffer means that subscriber misses the event
// rather than everyone waiting on it.
func (m *RoomManager) Deliver(event *Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for c := range m.rooms[event.RoomID] {
		select {
		case c.Message <- event:
		default:
		}
	}
}

func (m *RoomManager) SubscriberCount(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[roomID])
}
