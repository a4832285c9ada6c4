package signaling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/HarshithaPadmanabha/StudyHub/internal/dns"
	"github.com/HarshithaPadmanabha/StudyHub/internal/version"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

var (
	ErrClientClosed      = errors.New("signaling client closed")
	ErrSendBufferFull    = errors.New("signaling send buffer full")
	ErrReconnectExceeded = errors.New("reconnect attempts exhausted")
)

// Backoff computes exponential reconnect delays.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff starts at 500ms and caps at 30s.
var DefaultBackoff = Backoff{Base: 500 * time.Millisecond, Max: 30 * time.Second}

// Duration returns the delay before reconnect attempt n (1-based).
func (b Backoff) Duration(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := b.Base
	for i := 1; i < n; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}

// Client manages the WebSocket connection to the room server. Inbound messages,
// plus synthesized connect/disconnect markers, arrive on Incoming in delivery order.
type Client struct {
	serverURL string
	dialer    websocket.Dialer
	backoff   Backoff
	attempts  int
	log       *slog.Logger

	conn      *websocket.Conn
	incoming  chan *Message
	outgoing  chan *Message
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithReconnectAttempts bounds consecutive failed reconnects. 0 retries forever,
// a negative value disables reconnecting.
func WithReconnectAttempts(n int) Option {
	return func(c *Client) { c.attempts = n }
}

// WithBackoff overrides the reconnect delays.
func WithBackoff(b Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// NewClient creates a new signaling client
func NewClient(serverURL string, opts ...Option) *Client {
	dialer := *websocket.DefaultDialer
	dialer.NetDialContext = dns.DialContext

	c := &Client{
		serverURL: serverURL,
		dialer:    dialer,
		backoff:   DefaultBackoff,
		log:       slog.Default(),
		incoming:  make(chan *Message, sendBufferSize),
		outgoing:  make(chan *Message, sendBufferSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "signaling")
	return c
}

// Connect establishes the first WebSocket connection. Run serves it.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	conn, _, err := c.dialer.DialContext(ctx, c.serverURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return conn, nil
}

// Run serves the connection and reconnects with backoff when it drops. It closes
// Incoming on return.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.incoming)

	failures := 0
	conn := c.conn
	for {
		var err error
		if conn == nil {
			conn, err = c.dial(ctx)
		}

		if conn != nil {
			failures = 0
			c.deliver(&Message{Type: MessageTypeConnect})
			c.serve(ctx, conn)
			conn = nil
			if c.closed() || ctx.Err() != nil {
				return nil
			}
			c.log.Warn("connection lost")
			c.deliver(&Message{Type: MessageTypeDisconnect})
		} else {
			c.log.Warn("reconnect failed", "attempt", failures+1, "err", err)
		}

		if c.closed() {
			return nil
		}

		failures++
		if c.attempts < 0 || (c.attempts > 0 && failures > c.attempts) {
			return ErrReconnectExceeded
		}

		select {
		case <-time.After(c.backoff.Duration(failures)):
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		}
	}
}

func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	stop := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		c.writePump(ctx, conn, stop)
	}()

	c.readPump(conn)
	close(stop)
	<-writerDone
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read failed", "err", err)
			}
			return
		}
		if msg.Type == MessageTypeConnect || msg.Type == MessageTypeDisconnect {
			continue
		}
		if !c.deliver(&msg) {
			return
		}
	}
}

// writePump writes messages to the WebSocket connection and sends periodic pings.
func (c *Client) writePump(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message := <-c.outgoing:
			if err := c.write(conn, message); err != nil {
				c.log.Debug("write failed", "type", message.Type, "err", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.flush(conn)
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ctx.Done():
			return

		case <-stop:
			return
		}
	}
}

// flush writes whatever is still queued, so a final leave-room is not lost on Close.
func (c *Client) flush(conn *websocket.Conn) {
	for {
		select {
		case message := <-c.outgoing:
			if err := c.write(conn, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(conn *websocket.Conn, msg *Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (c *Client) deliver(msg *Message) bool {
	select {
	case c.incoming <- msg:
		return true
	case <-c.done:
		return false
	}
}

// Send queues a message for the server without waiting for delivery.
func (c *Client) Send(msg *Message) error {
	if c.closed() {
		return ErrClientClosed
	}

	select {
	case c.outgoing <- msg:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// Incoming returns the channel for receiving messages.
func (c *Client) Incoming() <-chan *Message {
	return c.incoming
}

// Close closes the WebSocket connection and stops reconnecting.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		// Connected but never served.
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
