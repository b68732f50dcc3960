package hub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

// ErrClosed is returned by Register after the hub has been closed.
var ErrClosed = errors.New("hub: closed")

// Channel is one connected observer. Send must not block: implementations
// queue the message or fail fast. A non-nil error marks the channel as
// unreachable and the hub drops it.
type Channel interface {
	Send(msg []byte) error
}

// Hub fans out emitted events to every registered Channel. It keeps no
// history; a channel only sees events emitted while it is registered.
type Hub struct {
	mu      sync.Mutex
	members map[Channel]struct{}
	closed  bool

	// emitMu serializes Emit so every member sees events in emission order.
	emitMu sync.Mutex

	logger *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		members: make(map[Channel]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(ch Channel) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.members[ch] = struct{}{}
	return nil
}

// Unregister removes ch. Removing an absent channel is a no-op.
func (h *Hub) Unregister(ch Channel) {
	h.mu.Lock()
	delete(h.members, ch)
	h.mu.Unlock()
}

// Count returns the current membership size.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.members)
}

// Emit implements events.Emitter. Delivery goes to the members present when
// Emit was called; channels registered or removed during the broadcast do
// not change who receives this event.
func (h *Hub) Emit(e events.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.logger.Warn("hub: drop unencodable event", "type", string(e.Type), "id", e.ID, "err", err)
		return
	}

	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	var failed []Channel
	for _, ch := range h.snapshot() {
		if err := ch.Send(msg); err != nil {
			failed = append(failed, ch)
			h.logger.Debug("hub: send failed", "err", err)
		}
	}
	for _, ch := range failed {
		h.Unregister(ch)
	}
	if len(failed) > 0 {
		h.logger.Info("hub: pruned unreachable channels", "pruned", len(failed), "remaining", h.Count())
	}
}

func (h *Hub) snapshot() []Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	out := make([]Channel, 0, len(h.members))
	for ch := range h.members {
		out = append(out, ch)
	}
	return out
}

// Close drops every member. Later Emit calls are no-ops and Register fails.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.members = make(map[Channel]struct{})
	h.mu.Unlock()
}
