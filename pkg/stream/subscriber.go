// Package stream is a small client for the realtime channel. It keeps a
// local, deduplicated list of feed posts current: an optional REST snapshot
// seeds the list, then post:created frames from the websocket extend it.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Post is the slice of a feed entry the subscriber cares about. Raw holds the
// full wire payload for callers that need more fields.
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	PostType string `json:"postType"`
	Author   string `json:"author"`

	Raw json.RawMessage `json:"-"`
}

// Options configures a subscription. Endpoint is the only required field.
type Options struct {
	// Endpoint is the websocket URL, e.g. ws://host:5000/ws.
	Endpoint string
	// Scope limits the list to one post type ("event" or "vlog"). Empty
	// means both.
	Scope string
	// OwnerID, when set, keeps only posts authored by this account.
	OwnerID string
	// SnapshotURL, when set, is fetched once before dialing and seeds the
	// list. It must return a JSON array of posts.
	SnapshotURL string

	HTTPClient *http.Client
	Dialer     *websocket.Dialer
	// Rooms are joined right after connecting. Posts need no room, but a
	// caller can sit in chat rooms and observe them through OnEvent.
	Rooms []string
	// OnEvent, when set, receives every frame before it is processed.
	OnEvent func(event string, data json.RawMessage)
}

type frame struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Subscription is a live connection to the realtime channel. Close it when
// done; Close is safe to call more than once.
type Subscription struct {
	sock *websocket.Conn

	mu    sync.Mutex
	posts []Post
	seen  map[string]struct{}
	err   error

	closeOnce sync.Once
	done      chan struct{}

	scope string
	owner string
}

// Subscribe fetches the snapshot (when configured), dials the websocket and
// starts collecting posts in the background.
func Subscribe(ctx context.Context, opts Options) (*Subscription, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("stream: endpoint is required")
	}

	s := &Subscription{
		seen:  make(map[string]struct{}),
		done:  make(chan struct{}),
		scope: opts.Scope,
		owner: opts.OwnerID,
	}

	if opts.SnapshotURL != "" {
		if err := s.seed(ctx, opts); err != nil {
			return nil, err
		}
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	sock, _, err := dialer.DialContext(ctx, opts.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("stream: dial %s: %w", opts.Endpoint, err)
	}
	s.sock = sock

	for _, room := range opts.Rooms {
		if err := sock.WriteJSON(frame{Event: "chat:join", Room: room}); err != nil {
			s.Close()
			return nil, fmt.Errorf("stream: join %s: %w", room, err)
		}
	}

	go s.readLoop(opts.OnEvent)
	return s, nil
}

func (s *Subscription) seed(ctx context.Context, opts Options) error {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.SnapshotURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("stream: snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream: snapshot returned %d", resp.StatusCode)
	}

	var raws []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return fmt.Errorf("stream: decode snapshot: %w", err)
	}
	for _, raw := range raws {
		s.add(raw)
	}
	return nil
}

func (s *Subscription) readLoop(onEvent func(string, json.RawMessage)) {
	for {
		var f frame
		if err := s.sock.ReadJSON(&f); err != nil {
			s.mu.Lock()
			select {
			case <-s.done:
				// Closed by the caller; not an error.
			default:
				s.err = err
			}
			s.mu.Unlock()
			s.Close()
			return
		}
		if onEvent != nil {
			onEvent(f.Event, f.Data)
		}
		if f.Event != "post:created" {
			continue
		}
		var payload struct {
			Type string          `json:"type"`
			Post json.RawMessage `json:"post"`
		}
		if err := json.Unmarshal(f.Data, &payload); err != nil {
			continue
		}
		s.mu.Lock()
		s.addLocked(payload.Post)
		s.mu.Unlock()
	}
}

func (s *Subscription) add(raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(raw)
}

// addLocked parses, filters and dedups one post. Callers hold s.mu.
func (s *Subscription) addLocked(raw json.RawMessage) {
	var p Post
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	if p.ID == "" {
		// Older payloads carry the id under a Mongo-style key.
		var alt struct {
			ID string `json:"_id"`
		}
		if json.Unmarshal(raw, &alt) == nil {
			p.ID = alt.ID
		}
	}
	if p.ID == "" {
		return
	}
	if s.scope != "" && p.PostType != s.scope {
		return
	}
	if s.owner != "" && p.Author != s.owner {
		return
	}
	if _, dup := s.seen[p.ID]; dup {
		return
	}
	s.seen[p.ID] = struct{}{}
	p.Raw = raw
	s.posts = append(s.posts, p)
}

// Posts returns a copy of the collected posts, oldest first.
func (s *Subscription) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Err reports why the connection dropped, nil after a clean Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down the connection. Safe to call multiple times.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.sock != nil {
			_ = s.sock.Close()
		}
	})
}
