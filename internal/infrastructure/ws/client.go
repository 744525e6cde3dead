package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Client is one live subscription to a room's event stream: a host console or
// a waiting participant. The Message channel is buffered so one slow reader
// never stalls delivery to the rest of the room.
type Client struct {
	conn    *websocket.Conn
	Message chan *Event
	ID      string
	RoomID  string
}

func NewClient(conn *websocket.Conn, id, roomID string) *Client {
	return &Client{
		conn:    conn,
		Message: make(chan *Event, 64),
		ID:      id,
		RoomID:  roomID,
	}
}

// ReadPump drains the connection until it drops. Subscribers don't send
// anything meaningful upstream; reading is how we notice the disconnect.
func (c *Client) ReadPump(core *Core) {
	defer func() {
		core.Unregister() <- c
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (subscriber %s): %v", c.ID, err)
			}
			break
		}
	}
}

// WritePump pushes queued events to the connection with a bounded write
// deadline per event.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for event := range c.Message {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(event); err != nil {
			log.Printf("ws write error (subscriber %s): %v", c.ID, err)
			break
		}
	}
}
