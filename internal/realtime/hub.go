package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Wire event names. Clients join chat rooms explicitly; post:created goes to
// every connection.
const (
	EventChatJoin    = "chat:join"
	EventChatMessage = "chat:message"
	EventPostCreated = "post:created"
)

// Event is one JSON frame on the realtime channel.
type Event struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Publisher is the send-side surface application services use.
type Publisher interface {
	// PublishRoom pushes an event to every connection joined to room.
	PublishRoom(room, event string, data interface{})
	// PublishAll pushes an event to every open connection.
	PublishAll(event string, data interface{})
}

// Hub tracks open connections and room membership. A connection may sit in
// any number of rooms; unregistering removes it from all of them. Delivery is
// best effort: a connection whose send buffer is full is dropped rather than
// allowed to stall everyone else.
type Hub struct {
	log *slog.Logger

	mu    sync.RWMutex
	conns map[*Conn]struct{}
	rooms map[string]map[*Conn]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[*Conn]struct{}),
		rooms: make(map[string]map[*Conn]struct{}),
	}
}

func (h *Hub) register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.conns, c)
	h.mu.Unlock()

	c.close()
}

// Join adds a connection to a room, creating the room on first use.
func (h *Hub) Join(c *Conn, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	h.log.Debug("joined room", "conn", c.id, "room", room)
}

func (h *Hub) PublishRoom(room, event string, data interface{}) {
	ev, ok := h.encode(event, room, data)
	if !ok {
		return
	}
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, ev)
}

func (h *Hub) PublishAll(event string, data interface{}) {
	ev, ok := h.encode(event, "", data)
	if !ok {
		return
	}
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, ev)
}

func (h *Hub) encode(event, room string, data interface{}) (Event, bool) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Warn("drop undeliverable event", "event", event, "err", err)
		return Event{}, false
	}
	return Event{Event: event, Room: room, Data: raw}, true
}

func (h *Hub) deliver(targets []*Conn, ev Event) {
	for _, c := range targets {
		if !c.enqueue(ev) {
			h.log.Warn("dropping slow connection", "conn", c.id)
			h.unregister(c)
		}
	}
}
