package ws

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrClosed is returned by Send once a subscriber's connection is gone.
	ErrClosed = errors.New("ws: subscriber closed")
	// ErrQueueFull is returned when a subscriber cannot keep up with updates.
	ErrQueueFull = errors.New("ws: subscriber send queue full")
)

// Subscriber abstracts a streaming client.
type Subscriber interface {
	// ID identifies the underlying connection.
	ID() string
	// Send queues payload for delivery without waiting on the network.
	Send([]byte) error
	Close()
	// Done is closed when the connection closes or errors.
	Done() <-chan struct{}
}

// Hub fans team snapshots out to subscribers and removes subscribers whose
// connection has closed.
type Hub struct {
	mu      sync.Mutex
	dir     *Directory
	logger  *slog.Logger
	metrics *Metrics
}

// NewHub creates a Hub over dir. A nil dir gets a fresh Directory and nil
// metrics disables instrumentation.
func NewHub(dir *Directory, logger *slog.Logger, metrics *Metrics) *Hub {
	if dir == nil {
		dir = NewDirectory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{dir: dir, logger: logger.With("component", "hub"), metrics: metrics}
}

// Directory exposes the subscription directory.
func (h *Hub) Directory() *Directory {
	return h.dir
}

// Register adds a client to a team stream. The subscription is dropped
// automatically when the client's Done channel closes.
func (h *Hub) Register(teamID int64, sub Subscriber) {
	if isClosed(sub) {
		return
	}
	if !h.dir.Subscribe(teamID, sub) {
		return
	}
	h.metrics.listenerAdded()
	h.logger.Debug("listener registered", "team_id", teamID, "listener_id", sub.ID())
	go h.watch(teamID, sub)
}

// Attach registers sub and queues the payload returned by initial as its
// first message. No broadcast can interleave between the two steps, so the
// subscriber never sees an older snapshot after a newer one.
func (h *Hub) Attach(teamID int64, sub Subscriber, initial func() ([]byte, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	payload, err := initial()
	if err != nil {
		return err
	}
	h.Register(teamID, sub)
	h.deliver(teamID, sub, payload)
	return nil
}

// Unregister removes a client. Removing an unknown client is a no-op.
func (h *Hub) Unregister(teamID int64, sub Subscriber) {
	if h.dir.Unsubscribe(teamID, sub) {
		h.metrics.listenerRemoved()
	}
}

// ListenersFor returns the current subscribers for teamID.
func (h *Hub) ListenersFor(teamID int64) []Subscriber {
	return h.dir.ListenersFor(teamID)
}

// Broadcast sends payload to all team clients. Per-subscriber failures are
// logged and counted, never returned.
func (h *Hub) Broadcast(teamID int64, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.dir.ListenersFor(teamID) {
		h.deliver(teamID, sub, payload)
	}
}

// Reset closes and forgets every subscriber.
func (h *Hub) Reset() {
	h.mu.Lock()
	removed := h.dir.Reset()
	h.mu.Unlock()
	for _, sub := range removed {
		h.metrics.listenerRemoved()
		sub.Close()
	}
}

func (h *Hub) deliver(teamID int64, sub Subscriber, payload []byte) {
	if isClosed(sub) {
		h.metrics.delivery(resultSkipped)
		return
	}
	if err := sub.Send(payload); err != nil {
		h.metrics.delivery(resultFailed)
		h.logger.Debug("listener delivery failed", "team_id", teamID, "listener_id", sub.ID(), "error", err)
		return
	}
	h.metrics.delivery(resultDelivered)
}

func (h *Hub) watch(teamID int64, sub Subscriber) {
	<-sub.Done()
	if h.dir.Unsubscribe(teamID, sub) {
		h.metrics.listenerRemoved()
		h.logger.Debug("listener removed", "team_id", teamID, "listener_id", sub.ID())
	}
}

func isClosed(sub Subscriber) bool {
	select {
	case <-sub.Done():
		return true
	default:
		return false
	}
}
