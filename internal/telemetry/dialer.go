package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the minimal surface the connector needs from a live
// connection. The production implementation wraps a websocket; tests
// substitute fakes.
type Conn interface {
	// ReadMessage blocks until the next inbound frame or a connection
	// error.
	ReadMessage() ([]byte, error)
	// Ping sends a keep-alive control frame. Servers that do not
	// support it simply ignore the frame.
	Ping(deadline time.Time) error
	Close() error
}

// Dialer opens a connection attempt against one candidate endpoint.
type Dialer interface {
	DialContext(ctx context.Context, rawURL string) (Conn, error)
}

// NewWebsocketDialer returns the production Dialer backed by
// gorilla/websocket.
func NewWebsocketDialer(handshakeTimeout time.Duration) Dialer {
	return &wsDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

type wsDialer struct {
	dialer *websocket.Dialer
}

func (d *wsDialer) DialContext(ctx context.Context, rawURL string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) Ping(deadline time.Time) error {
	return c.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
