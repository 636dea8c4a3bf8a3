package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushServer upgrades every /ws request and writes the given frames to the
// client, then holds the connection open.
func pushServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/snapshot" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[{"id":"snap-1","title":"Seeded","postType":"event","author":"ngo-1"}]`)
			return
		}
		sock, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		for _, f := range frames {
			require.NoError(t, sock.WriteMessage(websocket.TextMessage, []byte(f)))
		}
		// Keep the connection open until the client hangs up.
		for {
			if _, _, err := sock.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func postFrame(id, postType, author string) string {
	return fmt.Sprintf(`{"event":"post:created","data":{"type":%q,"post":{"id":%q,"title":"x","postType":%q,"author":%q}}}`,
		postType, id, postType, author)
}

func waitForPosts(t *testing.T, s *Subscription, n int) []Post {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := s.Posts(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d posts, have %d", n, len(s.Posts()))
	return nil
}

func TestSubscribe_CollectsNewPosts(t *testing.T) {
	srv := pushServer(t, []string{
		postFrame("p1", "event", "ngo-1"),
		postFrame("p2", "event", "ngo-2"),
	})
	s, err := Subscribe(context.Background(), Options{Endpoint: wsURL(srv)})
	require.NoError(t, err)
	defer s.Close()

	got := waitForPosts(t, s, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p2", got[1].ID)
}

func TestSubscribe_DeduplicatesById(t *testing.T) {
	srv := pushServer(t, []string{
		postFrame("p1", "event", "ngo-1"),
		postFrame("p1", "event", "ngo-1"),
		postFrame("p2", "event", "ngo-1"),
	})
	s, err := Subscribe(context.Background(), Options{Endpoint: wsURL(srv)})
	require.NoError(t, err)
	defer s.Close()

	got := waitForPosts(t, s, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p2", got[1].ID)
}

func TestSubscribe_OwnerFilter(t *testing.T) {
	srv := pushServer(t, []string{
		postFrame("p1", "event", "ngo-1"),
		postFrame("p2", "event", "someone-else"),
		postFrame("p3", "event", "ngo-1"),
	})
	s, err := Subscribe(context.Background(), Options{Endpoint: wsURL(srv), OwnerID: "ngo-1"})
	require.NoError(t, err)
	defer s.Close()

	got := waitForPosts(t, s, 2)
	assert.Equal(t, []string{"p1", "p3"}, []string{got[0].ID, got[1].ID})
}

func TestSubscribe_ScopeFilter(t *testing.T) {
	srv := pushServer(t, []string{
		postFrame("p1", "vlog", "ngo-1"),
		postFrame("p2", "event", "ngo-1"),
	})
	s, err := Subscribe(context.Background(), Options{Endpoint: wsURL(srv), Scope: "vlog"})
	require.NoError(t, err)
	defer s.Close()

	got := waitForPosts(t, s, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestSubscribe_SnapshotSeedsAndDedups(t *testing.T) {
	srv := pushServer(t, []string{
		postFrame("snap-1", "event", "ngo-1"), // already in the snapshot
		postFrame("p2", "event", "ngo-1"),
	})
	s, err := Subscribe(context.Background(), Options{
		Endpoint:    wsURL(srv),
		SnapshotURL: srv.URL + "/snapshot",
	})
	require.NoError(t, err)
	defer s.Close()

	got := waitForPosts(t, s, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "snap-1", got[0].ID)
	assert.Equal(t, "Seeded", got[0].Title)
	assert.Equal(t, "p2", got[1].ID)
}

func TestSubscribe_MongoStyleIdAccepted(t *testing.T) {
	frame := `{"event":"post:created","data":{"type":"event","post":{"_id":"p1","postType":"event","author":"a"}}}`
	srv := pushServer(t, []string{frame})
	s, err := Subscribe(context.Background(), Options{Endpoint: wsURL(srv)})
	require.NoError(t, err)
	defer s.Close()

	got := waitForPosts(t, s, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestSubscribe_IgnoresOtherEventsAndGarbage(t *testing.T) {
	srv := pushServer(t, []string{
		`{"event":"chat:message","data":{"text":"hi"}}`,
		`{"event":"post:created","data":"not an object"}`,
		postFrame("p1", "event", "ngo-1"),
	})
	s, err := Subscribe(context.Background(), Options{Endpoint: wsURL(srv)})
	require.NoError(t, err)
	defer s.Close()

	got := waitForPosts(t, s, 1)
	assert.Len(t, got, 1)
}

func TestSubscribe_OnEventSeesEveryFrame(t *testing.T) {
	srv := pushServer(t, []string{
		`{"event":"chat:message","data":{"text":"hi"}}`,
		postFrame("p1", "event", "ngo-1"),
	})
	events := make(chan string, 4)
	s, err := Subscribe(context.Background(), Options{
		Endpoint: wsURL(srv),
		OnEvent:  func(event string, _ json.RawMessage) { events <- event },
	})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "chat:message", <-events)
	assert.Equal(t, "post:created", <-events)
}

func TestSubscribe_CloseIsIdempotent(t *testing.T) {
	srv := pushServer(t, nil)
	s, err := Subscribe(context.Background(), Options{Endpoint: wsURL(srv)})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.Close()
		s.Close()
		s.Close()
	})
	// A clean close is not an error.
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, s.Err())
}

func TestSubscribe_MissingEndpoint(t *testing.T) {
	_, err := Subscribe(context.Background(), Options{})
	assert.Error(t, err)
}

func TestSubscribe_BadSnapshotStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := Subscribe(context.Background(), Options{
		Endpoint:    "ws://127.0.0.1:1/ws",
		SnapshotURL: srv.URL,
	})
	assert.Error(t, err)
}
