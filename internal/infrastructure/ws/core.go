package ws

import "log"

// Core is the fan-out hub. State changes commit first, then events flow
// through here; Publish never blocks the caller and never reports failure
// back into the triggering operation.
type Core struct {
	roomMgr    *RoomManager
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

func NewCore(roomMgr *RoomManager) *Core {
	return &Core{
		roomMgr:    roomMgr,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 256),
	}
}

func (c *Core) Run() {
	for {
		select {
		case cl := <-c.register:
			c.roomMgr.AddClient(cl)

		case cl := <-c.unregister:
			c.roomMgr.RemoveClient(cl)

		case event := <-c.broadcast:
			c.roomMgr.Deliver(event)
		}
	}
}

func (c *Core) Register() chan<- *Client {
	return c.register
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

// Publish queues the event for delivery to every live subscription of its
// room. Fire-and-forget: if the hub is saturated the event is dropped and
// logged rather than stalling an admit or deny.
func (c *Core) Publish(event *Event) {
	select {
	case c.broadcast <- event:
	default:
		log.Printf("ws broadcast queue full, dropping %s for room %s", event.Type, event.RoomID)
	}
}
