package hub

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Enough for SDP offers with many candidates.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Client is one websocket connection. Its room fields are owned by the hub
// goroutine.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *signaling.Message
	log  *slog.Logger

	roomID   string
	identity string
	name     string
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan *signaling.Message, sendBufferSize),
		log:  h.log.With("remote", conn.RemoteAddr().String()),
	}
}

// readPump forwards messages from the connection to the hub until the
// connection fails, then unregisters the client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg signaling.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("Read failed", "error", err)
			}
			return
		}
		select {
		case c.hub.inbound <- envelope{client: c, msg: &msg}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump writes queued messages and keepalive pings. It exits when the hub
// closes the send channel or stops.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug("Write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.hub.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

// deliver queues msg without blocking the hub. A client that cannot keep up
// loses the message.
func (c *Client) deliver(msg *signaling.Message) {
	select {
	case c.send <- msg:
	default:
		c.hub.metrics.Dropped.Inc()
		c.log.Warn("Send buffer full, dropping message", "type", msg.Type, "identity", c.identity)
	}
}

func (c *Client) sendError(text string) {
	msg, err := signaling.NewMessage(signaling.MessageTypeError, signaling.ErrorPayload{Error: text})
	if err != nil {
		return
	}
	c.deliver(msg)
}
