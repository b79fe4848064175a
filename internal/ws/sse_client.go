package ws

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SSEClient streams Server-Sent Events over an HTTP response writer. Send
// only queues; Serve, running on the request goroutine, does the writing.
type SSEClient struct {
	id        string
	mu        sync.Mutex
	writer    io.Writer
	flusher   http.Flusher
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       *slog.Logger
}

// NewSSEClient builds an SSE client instance.
func NewSSEClient(writer io.Writer, flusher http.Flusher, logger *slog.Logger, sendBuffer int) *SSEClient {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &SSEClient{
		id:      id,
		writer:  writer,
		flusher: flusher,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		log:     logger.With("listener_id", id),
	}
}

// ID returns the stream identity.
func (c *SSEClient) ID() string {
	return c.id
}

// Done is closed once the stream ends.
func (c *SSEClient) Done() <-chan struct{} {
	return c.done
}

// Send queues a data event for the stream.
func (c *SSEClient) Send(payload []byte) error {
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
		c.log.Warn("sse send queue full, closing listener")
		c.Close()
		return ErrQueueFull
	}
}

// Serve writes queued events and heartbeats until ctx ends, the client is
// closed, or a write fails.
func (c *SSEClient) Serve(ctx context.Context, heartbeat time.Duration) error {
	defer c.Close()
	var tick <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		case payload := <-c.send:
			if err := c.write(payload); err != nil {
				return err
			}
		case <-tick:
			if err := c.Heartbeat(); err != nil {
				return err
			}
		}
	}
}

func (c *SSEClient) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.writer, "data: %s\n\n", payload); err != nil {
		c.log.Warn("sse send failed", "error", err)
		return err
	}
	c.flusher.Flush()
	return nil
}

// Heartbeat emits a comment frame to keep the connection alive.
func (c *SSEClient) Heartbeat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprint(c.writer, ": ping\n\n"); err != nil {
		c.log.Warn("sse heartbeat failed", "error", err)
		return err
	}
	c.flusher.Flush()
	return nil
}

// Close marks the stream as closed.
func (c *SSEClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
