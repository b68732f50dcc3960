package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

const (
	DefaultURL            = "ws://localhost:3847"
	DefaultReconnectDelay = 3 * time.Second
	DefaultDialTimeout    = 5 * time.Second
)

// ErrDisconnected is returned by a Connect whose dial finished after an
// explicit Disconnect. The new connection is discarded.
var ErrDisconnected = errors.New("transport: disconnected during connect")

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnectScheduled
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnectScheduled:
		return "reconnect-scheduled"
	default:
		return "disconnected"
	}
}

type Options struct {
	URL            string
	ReconnectDelay time.Duration
	DialTimeout    time.Duration
	Dialer         *websocket.Dialer
	Logger         *slog.Logger

	// OnEvent receives every well-formed event, one at a time, in arrival
	// order. It runs on the connection's read goroutine and must not block.
	OnEvent func(events.Event)
	// OnStateChange is told about state transitions in the order they
	// happened. A transition already superseded by a later one that was
	// delivered first is skipped. It must not call back into the Client.
	OnStateChange func(State)
}

// Client keeps one WebSocket connection to the hub alive. After an
// unexpected failure it waits ReconnectDelay and dials again, until
// Disconnect is called.
type Client struct {
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	state State
	conn  *websocket.Conn
	timer *time.Timer
	// timerSeq identifies the armed timer so a stale callback that lost
	// the race with Stop can recognise itself and bail out.
	timerSeq uint64
	// epoch advances on every Disconnect; dials and read loops started in
	// an older epoch discard their results.
	epoch uint64
	// stateSeq numbers every transition.
	stateSeq uint64

	notifyMu sync.Mutex
	notified uint64
}

type stateChange struct {
	seq   uint64
	state State
}

func New(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{opts: opts, logger: logger}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Connected() bool {
	return c.State() == StateConnected
}

// Connect dials the hub. It is a no-op while connected or while another
// dial is in flight. A pending reconnect timer is cancelled and replaced by
// this attempt. On failure the client schedules a retry and returns the
// dial error.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.stopTimerLocked()
	epoch := c.epoch
	changes := c.setStateLocked(StateConnecting)
	c.mu.Unlock()
	c.notify(changes)
	return c.dial(epoch)
}

// dial runs one connection attempt started in the given epoch. The caller
// has already moved the client to StateConnecting.
func (c *Client) dial(epoch uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.DialTimeout)
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, nil)
	cancel()

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return ErrDisconnected
	}
	var changes []stateChange
	if err != nil {
		changes = c.setStateLocked(StateDisconnected)
		changes = append(changes, c.scheduleLocked()...)
		c.mu.Unlock()
		c.notify(changes)
		c.logger.Warn("transport: connect failed", "url", c.opts.URL, "retry_in", c.opts.ReconnectDelay, "err", err)
		return fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	c.conn = conn
	changes = c.setStateLocked(StateConnected)
	c.mu.Unlock()
	c.notify(changes)
	c.logger.Info("transport: connected", "url", c.opts.URL)

	go c.readLoop(conn, epoch)
	return nil
}

// Disconnect cancels any pending reconnect, closes the connection and
// leaves the client disconnected until Connect is called again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.epoch++
	c.stopTimerLocked()
	conn := c.conn
	c.conn = nil
	changes := c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
	c.notify(changes)
}

func (c *Client) readLoop(conn *websocket.Conn, epoch uint64) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleLoss(conn, epoch, err)
			return
		}
		var e events.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			c.logger.Warn("transport: dropping malformed message", "err", err, "bytes", len(raw))
			continue
		}
		if !c.current(conn, epoch) {
			return
		}
		if c.opts.OnEvent != nil {
			c.opts.OnEvent(e)
		}
	}
}

func (c *Client) current(conn *websocket.Conn, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == conn && c.epoch == epoch
}

func (c *Client) handleLoss(conn *websocket.Conn, epoch uint64, cause error) {
	c.mu.Lock()
	if c.conn != conn || c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	changes := c.setStateLocked(StateDisconnected)
	changes = append(changes, c.scheduleLocked()...)
	c.mu.Unlock()

	conn.Close()
	c.notify(changes)
	c.logger.Warn("transport: connection lost", "url", c.opts.URL, "retry_in", c.opts.ReconnectDelay, "err", cause)
}

// scheduleLocked arms the reconnect timer unless one is already armed.
func (c *Client) scheduleLocked() []stateChange {
	if c.timer != nil {
		return nil
	}
	c.timerSeq++
	seq := c.timerSeq
	c.timer = time.AfterFunc(c.opts.ReconnectDelay, func() { c.fire(seq) })
	return c.setStateLocked(StateReconnectScheduled)
}

func (c *Client) fire(seq uint64) {
	c.mu.Lock()
	if c.timer == nil || seq != c.timerSeq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.state != StateReconnectScheduled {
		c.mu.Unlock()
		return
	}
	epoch := c.epoch
	changes := c.setStateLocked(StateConnecting)
	c.mu.Unlock()
	c.notify(changes)
	c.dial(epoch)
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) setStateLocked(s State) []stateChange {
	if c.state == s {
		return nil
	}
	c.state = s
	c.stateSeq++
	return []stateChange{{seq: c.stateSeq, state: s}}
}

// notify delivers changes outside c.mu. Two goroutines can race here after
// unlocking, so a change older than the last delivered one is dropped and
// subscribers always end on the current state.
func (c *Client) notify(changes []stateChange) {
	if c.opts.OnStateChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, ch := range changes {
		if ch.seq <= c.notified {
			continue
		}
		c.notified = ch.seq
		c.opts.OnStateChange(ch.state)
	}
}
