package ws

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/logger"
)

func startWSServer(t *testing.T, hub *Hub, teamID int64, opts ClientOptions) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(conn, logger.Discard(), opts)
		if err := hub.Attach(teamID, client, func() ([]byte, error) { return []byte("hello"), nil }); err != nil {
			client.Close()
			return
		}
		go client.ReadLoop()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestClientDeliversInOrderAndCleansUpOnClose(t *testing.T) {
	hub := newTestHub()
	srv := startWSServer(t, hub, 7, ClientOptions{SendBuffer: 8})
	conn := dial(t, srv)

	if got := readText(t, conn); got != "hello" {
		t.Fatalf("expected initial payload, got %q", got)
	}
	waitFor(t, time.Second, func() bool { return hub.Directory().Count(7) == 1 })

	hub.Broadcast(7, []byte("one"))
	hub.Broadcast(7, []byte("two"))
	if got := readText(t, conn); got != "one" {
		t.Fatalf("expected first update, got %q", got)
	}
	if got := readText(t, conn); got != "two" {
		t.Fatalf("expected second update, got %q", got)
	}

	_ = conn.Close()
	waitFor(t, 2*time.Second, func() bool { return hub.Directory().Count(7) == 0 })
}

func TestClientSendAfterCloseFails(t *testing.T) {
	hub := newTestHub()
	var mu sync.Mutex
	var server *Client
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(conn, logger.Discard(), ClientOptions{SendBuffer: 1})
		mu.Lock()
		server = c
		mu.Unlock()
		hub.Register(1, c)
	}))
	defer srv.Close()
	conn := dial(t, srv)
	defer conn.Close()

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return server != nil
	})
	mu.Lock()
	c := server
	mu.Unlock()

	c.Close()
	if err := c.Send([]byte("late")); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	waitFor(t, time.Second, func() bool { return hub.Directory().Count(1) == 0 })
}

type flushBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	flushes int
}

func (f *flushBuffer) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Write(p)
}

func (f *flushBuffer) Flush() {
	f.mu.Lock()
	f.flushes++
	f.mu.Unlock()
}

func (f *flushBuffer) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

func TestSSEClientServeWritesQueuedEvents(t *testing.T) {
	out := &flushBuffer{}
	client := NewSSEClient(out, out, logger.Discard(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Serve(ctx, 20*time.Millisecond) }()

	if err := client.Send([]byte(`{"id":1}`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, time.Second, func() bool { return strings.Contains(out.String(), `data: {"id":1}`) })
	waitFor(t, time.Second, func() bool { return strings.Contains(out.String(), ": ping") })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("serve did not return after cancel")
	}
	select {
	case <-client.Done():
	default:
		t.Fatal("expected client closed after serve returns")
	}
	if err := client.Send([]byte("late")); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSSEClientQueueOverflowCloses(t *testing.T) {
	out := &flushBuffer{}
	client := NewSSEClient(out, out, logger.Discard(), 1)
	if err := client.Send([]byte("one")); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := client.Send([]byte("two")); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	select {
	case <-client.Done():
	default:
		t.Fatal("expected overflow to close the client")
	}
}
