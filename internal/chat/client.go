package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"github.com/gorilla/websocket"
)

// Client is one live websocket subscriber. The read pump is the only
// reader, the write pump the only writer; everything else talks to the
// connection through the buffered send channel.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	user    *auth.User
	key     ScopeKey
	service *Service
	logger  *slog.Logger

	writeTimeout time.Duration
	pongTimeout  time.Duration
	maxFrameSize int64
}

func newClient(conn *websocket.Conn, user *auth.User, key ScopeKey, service *Service, cfg clientConfig, logger *slog.Logger) *Client {
	return &Client{
		conn:         conn,
		send:         make(chan []byte, cfg.sendBufferSize),
		done:         make(chan struct{}),
		user:         user,
		key:          key,
		service:      service,
		logger:       logger,
		writeTimeout: cfg.writeTimeout,
		pongTimeout:  cfg.pongTimeout,
		maxFrameSize: cfg.maxFrameSize,
	}
}

type clientConfig struct {
	sendBufferSize int
	writeTimeout   time.Duration
	pongTimeout    time.Duration
	maxFrameSize   int64
}

// Enqueue hands a frame to the write pump without blocking. A full buffer
// means this peer is too slow; the frame is dropped for it alone. The send
// channel is never closed, so a broadcast racing the teardown is safe.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) UserID() int64 {
	return c.user.ID
}

// readPump consumes inbound frames until the connection dies. Frames that
// are not valid JSON, or carry no message field, are dropped without
// closing the connection.
func (c *Client) readPump(registry *Registry) {
	defer func() {
		registry.Leave(c.key, c)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", "error", err, "user_id", c.user.ID)
			}
			return
		}

		var in InboundMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			continue
		}

		if err := c.service.Post(context.Background(), c.key, c.user, in.Body); err != nil {
			c.handlePostError(err)
		}
	}
}

// handlePostError drops silent failures and reports loud ones back to the
// sender only.
func (c *Client) handlePostError(err error) {
	switch {
	case errors.Is(err, internal.ErrEmptyMessage):
		// dropped silently, same as a malformed frame
	case errors.Is(err, internal.ErrMessageTooLong):
		c.sendError("message too long")
	default:
		c.logger.Error("failed to post message", "error", err, "user_id", c.user.ID)
		c.sendError("failed to deliver message")
	}
}

func (c *Client) sendError(msg string) {
	frame, err := json.Marshal(ErrorFrame{Type: FrameError, Error: msg})
	if err != nil {
		return
	}
	c.Enqueue(frame)
}

// writePump drains the send channel and keeps the connection alive with
// pings. It exits when the read pump closes the channel.
func (c *Client) writePump() {
	pingPeriod := c.pongTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
