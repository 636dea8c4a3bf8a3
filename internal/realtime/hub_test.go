package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(new(strings.Builder), nil)))
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sock, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Serve(sock)
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	sock, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sock.Close() })
	return sock
}

func readEvent(t *testing.T, sock *websocket.Conn) Event {
	t.Helper()
	_ = sock.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, sock.ReadJSON(&ev))
	return ev
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func (h *Hub) roomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) connCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func TestHub_RoomDeliveryOnlyReachesMembers(t *testing.T) {
	hub, url := newTestServer(t)

	member := dial(t, url)
	outsider := dial(t, url)
	waitFor(t, func() bool { return hub.connCount() == 2 })

	require.NoError(t, member.WriteJSON(Event{Event: EventChatJoin, Room: "chat-1"}))
	waitFor(t, func() bool { return hub.roomSize("chat-1") == 1 })

	hub.PublishRoom("chat-1", EventChatMessage, map[string]string{"text": "hi"})

	ev := readEvent(t, member)
	assert.Equal(t, EventChatMessage, ev.Event)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, "hi", payload["text"])

	// The outsider must not receive anything.
	_ = outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var stray Event
	assert.Error(t, outsider.ReadJSON(&stray))
}

func TestHub_PublishAllReachesEveryConnection(t *testing.T) {
	hub, url := newTestServer(t)

	a := dial(t, url)
	b := dial(t, url)
	waitFor(t, func() bool { return hub.connCount() == 2 })

	hub.PublishAll(EventPostCreated, map[string]string{"type": "event"})

	assert.Equal(t, EventPostCreated, readEvent(t, a).Event)
	assert.Equal(t, EventPostCreated, readEvent(t, b).Event)
}

func TestHub_DisconnectLeavesAllRooms(t *testing.T) {
	hub, url := newTestServer(t)

	sock := dial(t, url)
	waitFor(t, func() bool { return hub.connCount() == 1 })

	require.NoError(t, sock.WriteJSON(Event{Event: EventChatJoin, Room: "chat-1"}))
	require.NoError(t, sock.WriteJSON(Event{Event: EventChatJoin, Room: "chat-2"}))
	waitFor(t, func() bool { return hub.roomSize("chat-1") == 1 && hub.roomSize("chat-2") == 1 })

	require.NoError(t, sock.Close())
	waitFor(t, func() bool { return hub.connCount() == 0 })
	assert.Zero(t, hub.roomSize("chat-1"))
	assert.Zero(t, hub.roomSize("chat-2"))
}

func TestHub_PublishToEmptyRoomIsANoOp(t *testing.T) {
	hub, _ := newTestServer(t)
	hub.PublishRoom("nobody-here", EventChatMessage, map[string]string{"text": "hi"})
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	hub, url := newTestServer(t)
	sock := dial(t, url)
	waitFor(t, func() bool { return hub.connCount() == 1 })

	hub.mu.RLock()
	var c *Conn
	for conn := range hub.conns {
		c = conn
	}
	hub.mu.RUnlock()
	require.NotNil(t, c)

	assert.NotPanics(t, func() {
		c.close()
		c.close()
	})
	_ = sock.Close()
}
