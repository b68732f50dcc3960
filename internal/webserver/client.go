package webserver

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	pongWait       = pingPeriod + writeWait
	maxClientFrame = 64 * 1024
	sendQueueSize  = 16
)

var errClientClosed = errors.New("dashboard client closed")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one dashboard WebSocket connection registered with the hub.
// Send only enqueues; writeLoop owns every data write to the socket.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send implements hub.Channel. A full queue drops this message for this
// client only; a closed client reports an error so the hub prunes it.
func (c *client) Send(msg []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- msg:
	case <-c.done:
		return errClientClosed
	default:
		c.logger.Debug("webserver: client queue full, dropping event", "remote", c.conn.RemoteAddr().String())
	}
	return nil
}

// close signals writeLoop, which sends a close frame and closes the socket.
func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.conn.Close()
	defer c.close()

	for {
		select {
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("webserver: write failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames until the connection fails. The dashboard
// is read-only, so incoming messages are discarded.
func (c *client) readLoop() {
	c.conn.SetReadLimit(maxClientFrame)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		return
	}
	c := newClient(conn, s.logger)
	if err := s.hub.Register(c); err != nil {
		conn.Close()
		return
	}
	s.track(c)
	s.logger.Info("dashboard client connected", "clients", s.hub.Count())

	go c.writeLoop()
	c.readLoop()

	s.hub.Unregister(c)
	s.untrack(c)
	c.close()
	s.logger.Info("dashboard client disconnected", "clients", s.hub.Count())
}
