package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// Conn is one websocket connection attached to the hub.
type Conn struct {
	id   string
	hub  *Hub
	sock *websocket.Conn

	send      chan Event
	closeOnce sync.Once
	done      chan struct{}
}

// Serve attaches an upgraded websocket to the hub and blocks until the peer
// disconnects. The read loop only understands join frames; everything else is
// server push.
func (h *Hub) Serve(sock *websocket.Conn) {
	c := &Conn{
		id:   uuid.NewString(),
		hub:  h,
		sock: sock,
		send: make(chan Event, sendBufferSize),
		done: make(chan struct{}),
	}
	h.register(c)
	h.log.Debug("connection open", "conn", c.id)

	go c.writeLoop()
	c.readLoop()

	h.unregister(c)
	h.log.Debug("connection closed", "conn", c.id)
}

func (c *Conn) readLoop() {
	for {
		var ev Event
		if err := c.sock.ReadJSON(&ev); err != nil {
			return
		}
		if ev.Event == EventChatJoin {
			c.hub.Join(c, ev.Room)
		}
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

// enqueue hands an event to the writer. Returns false when the buffer is full
// or the connection is closing.
func (c *Conn) enqueue(ev Event) bool {
	select {
	case <-c.done:
		return false
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// close is idempotent; unregister may run from both the serve path and the
// slow-consumer path.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}
