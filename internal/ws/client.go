package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultSendBuffer = 32
	writeWait         = 10 * time.Second
	maxInboundMessage = 1024
)

// ClientOptions tunes a websocket client.
type ClientOptions struct {
	// SendBuffer bounds the number of queued snapshots.
	SendBuffer int
	// PingEvery enables keepalive pings; the read deadline is twice this value.
	PingEvery time.Duration
}

// Client represents a websocket client connection. A single goroutine owns
// all data writes so queued snapshots reach the peer in order.
type Client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	pingEvery time.Duration
	log       *slog.Logger
}

// NewClient constructs a client wrapper and starts its writer.
func NewClient(conn *websocket.Conn, logger *slog.Logger, opts ClientOptions) *Client {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	c := &Client{
		id:        id,
		conn:      conn,
		send:      make(chan []byte, opts.SendBuffer),
		done:      make(chan struct{}),
		pingEvery: opts.PingEvery,
		log:       logger.With("listener_id", id),
	}
	go c.writeLoop()
	return c
}

// ID returns the connection identity.
func (c *Client) ID() string {
	return c.id
}

// Done is closed once the connection is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send queues a message for the websocket connection.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		c.log.Warn("websocket send queue full, closing listener")
		c.Close()
		return ErrQueueFull
	}
}

// Close marks the client closed and tears the connection down in the
// background. Done is closed before Close returns.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		go c.teardown()
	})
}

func (c *Client) teardown() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = c.conn.Close()
}

// ReadLoop drains inbound frames until the peer goes away, then closes the
// client. The channel is server-push only, so frames are discarded.
func (c *Client) ReadLoop() {
	defer c.Close()
	c.conn.SetReadLimit(maxInboundMessage)
	if c.pingEvery > 0 {
		wait := 2 * c.pingEvery
		_ = c.conn.SetReadDeadline(time.Now().Add(wait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(wait))
		})
	}
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	var ping <-chan time.Time
	if c.pingEvery > 0 {
		ticker := time.NewTicker(c.pingEvery)
		defer ticker.Stop()
		ping = ticker.C
	}
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Warn("websocket send failed", "error", err)
				c.Close()
				return
			}
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.log.Debug("websocket ping failed", "error", err)
				c.Close()
				return
			}
		}
	}
}
