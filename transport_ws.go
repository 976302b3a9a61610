package mqtt

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketSubprotocol is the registered MQTT WebSocket subprotocol.
const WebSocketSubprotocol = "mqtt"

// wsConn adapts a WebSocket connection to net.Conn. MQTT over WebSocket
// carries packet bytes in binary messages; message boundaries need not
// align with packet boundaries, so reads buffer partial messages.
type wsConn struct {
	conn    *websocket.Conn
	buf     []byte
	readPos int
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

// Read returns buffered message bytes, fetching the next binary message
// when the buffer is drained.
func (c *wsConn) Read(p []byte) (int, error) {
	if c.readPos < len(c.buf) {
		n := copy(p, c.buf[c.readPos:])
		c.readPos += n
		return n, nil
	}

	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		return 0, err
	}
	if messageType != websocket.BinaryMessage {
		return 0, ErrProtocolViolation
	}

	c.buf = data
	c.readPos = copy(p, data)
	return c.readPos, nil
}

// Write sends the bytes as one binary message.
func (c *wsConn) Write(b []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *wsConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.conn.SetReadDeadline(t); err != nil {
		return err
	}
	return c.conn.SetWriteDeadline(t)
}

func (c *wsConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

// WebSocketDialer connects to MQTT endpoints over WebSocket. The address
// passed to Dial is a ws:// or wss:// URL.
type WebSocketDialer struct {
	// Dialer is the underlying WebSocket dialer.
	Dialer *websocket.Dialer

	// Header is sent with the HTTP upgrade request.
	Header http.Header
}

// NewWebSocketDialer creates a dialer announcing the MQTT subprotocol.
// A nil header is allowed.
func NewWebSocketDialer(header http.Header) *WebSocketDialer {
	return &WebSocketDialer{
		Dialer: &websocket.Dialer{
			Subprotocols:    []string{WebSocketSubprotocol},
			ReadBufferSize:  defaultReadBufferSize,
			WriteBufferSize: defaultReadBufferSize,
		},
		Header: header,
	}
}

// Dial performs the WebSocket handshake and returns the wrapped
// connection.
func (d *WebSocketDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, address, d.Header)
	if err != nil {
		return nil, err
	}
	return newWSConn(conn), nil
}

// WebSocketHandler upgrades HTTP requests to MQTT-over-WebSocket and
// hands each connection to OnConnect as a framed Conn.
type WebSocketHandler struct {
	// Version is the protocol version for the framed connections.
	Version ProtocolVersion

	// OnConnect receives each upgraded connection.
	OnConnect func(conn *Conn)

	// ConnOptions are applied to each framed connection.
	ConnOptions []ConnOption

	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates an HTTP handler for MQTT over WebSocket.
func NewWebSocketHandler(version ProtocolVersion, onConnect func(conn *Conn), opts ...ConnOption) *WebSocketHandler {
	return &WebSocketHandler{
		Version:     version,
		OnConnect:   onConnect,
		ConnOptions: opts,
		upgrader: websocket.Upgrader{
			Subprotocols:    []string{WebSocketSubprotocol},
			ReadBufferSize:  defaultReadBufferSize,
			WriteBufferSize: defaultReadBufferSize,
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if h.OnConnect != nil {
		h.OnConnect(NewConn(newWSConn(conn), h.Version, h.ConnOptions...))
	}
}
