package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Transport errors.
var ErrUnsupportedScheme = errors.New("mqtt: unsupported URL scheme")

// defaultReadBufferSize is the initial size of a Conn's decode buffer.
const defaultReadBufferSize = 4096

// Dialer establishes raw network connections for MQTT. Implementations
// exist for TCP, TLS, Unix sockets, WebSocket, QUIC and SOCKS5 proxies.
type Dialer interface {
	Dial(ctx context.Context, address string) (net.Conn, error)
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithMaxPacketSize rejects inbound packets whose remaining length
// exceeds limit, before buffering their body.
func WithMaxPacketSize(limit uint32) ConnOption {
	return func(c *Conn) { c.maxPacketSize = limit }
}

// WithReadLimit throttles inbound bytes with a token bucket.
func WithReadLimit(limit rate.Limit, burst int) ConnOption {
	return func(c *Conn) { c.limiter = rate.NewLimiter(limit, burst) }
}

// Conn frames MQTT packets over a net.Conn. It owns a single decode
// buffer: packets returned by ReadPacket borrow from it and are valid
// only until the next ReadPacket call. Clone anything that must live
// longer.
//
// Conn carries no protocol state; pair it with an Engine.
type Conn struct {
	nc      net.Conn
	version ProtocolVersion

	buf    []byte
	filled int

	maxPacketSize uint32
	limiter       *rate.Limiter
}

// NewConn wraps an established network connection for the given protocol
// version.
func NewConn(nc net.Conn, version ProtocolVersion, opts ...ConnOption) *Conn {
	c := &Conn{
		nc:      nc,
		version: version,
		buf:     make([]byte, defaultReadBufferSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadPacket reads and decodes the next packet. It blocks until a full
// packet is buffered, the context expires, or the connection fails.
//
// The returned packet borrows from the connection's decode buffer; it is
// invalidated by the next ReadPacket call.
func (c *Conn) ReadPacket(ctx context.Context) (Packet, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.nc.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		defer c.nc.SetReadDeadline(time.Time{}) //nolint:errcheck
	}

	for {
		pkt, n, err := Decode(c.buf[:c.filled], c.version)
		if err == nil {
			// Shift the unconsumed tail to the front for the next call.
			copy(c.buf, c.buf[n:c.filled])
			c.filled -= n
			return pkt, nil
		}
		if !errors.Is(err, ErrIncomplete) {
			return nil, err
		}

		if err := c.checkSize(); err != nil {
			return nil, err
		}

		if c.filled == len(c.buf) {
			grown := make([]byte, len(c.buf)*2)
			copy(grown, c.buf[:c.filled])
			c.buf = grown
		}

		n, err = c.nc.Read(c.buf[c.filled:])
		if n > 0 {
			c.filled += n
			if c.limiter != nil {
				if lerr := c.limiter.WaitN(ctx, n); lerr != nil {
					return nil, lerr
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// checkSize rejects oversized packets as soon as the fixed header is
// readable, without waiting for the body.
func (c *Conn) checkSize() error {
	if c.maxPacketSize == 0 {
		return nil
	}
	header, _, err := decodeFixedHeader(c.buf[:c.filled], c.version)
	if err != nil {
		// Not enough bytes for a verdict yet, or a grammar error the
		// decode loop will surface.
		return nil //nolint:nilerr
	}
	if header.RemainingLength > c.maxPacketSize {
		return ErrPacketTooLarge
	}
	return nil
}

// WritePacket encodes and transmits one packet.
func (c *Conn) WritePacket(pkt Packet) error {
	_, err := Encode(c.nc, pkt, c.version)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr { return c.nc.LocalAddr() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// NetConn returns the underlying network connection.
func (c *Conn) NetConn() net.Conn { return c.nc }

// TCPDialer connects over plain TCP.
type TCPDialer struct {
	// Timeout bounds connection establishment. Zero means no timeout.
	Timeout time.Duration
}

// Dial connects to the address.
func (d *TCPDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, "tcp", address)
}

// TLSDialer connects over TLS.
type TLSDialer struct {
	// Config is the TLS configuration.
	Config *tls.Config

	// Timeout bounds connection establishment. Zero means no timeout.
	Timeout time.Duration
}

// Dial connects to the address.
func (d *TLSDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: d.Timeout},
		Config:    d.Config,
	}
	return dialer.DialContext(ctx, "tcp", address)
}

// UnixDialer connects over a Unix domain socket.
type UnixDialer struct {
	Timeout time.Duration
}

// Dial connects to the socket path.
func (d *UnixDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, "unix", address)
}

// Dial connects to an MQTT endpoint given as a URL and returns a framed
// Conn. Supported schemes: tcp, mqtt (plain TCP), ssl, tls, mqtts (TLS),
// unix, ws, wss (WebSocket) and quic.
func Dial(ctx context.Context, rawURL string, version ProtocolVersion, opts ...ConnOption) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("mqtt: invalid address: %w", err)
	}

	switch u.Scheme {
	case "tcp", "mqtt":
		d := &TCPDialer{}
		nc, err := d.Dial(ctx, hostPort(u, "1883"))
		if err != nil {
			return nil, err
		}
		return NewConn(nc, version, opts...), nil

	case "ssl", "tls", "mqtts":
		d := &TLSDialer{}
		nc, err := d.Dial(ctx, hostPort(u, "8883"))
		if err != nil {
			return nil, err
		}
		return NewConn(nc, version, opts...), nil

	case "unix":
		d := &UnixDialer{}
		nc, err := d.Dial(ctx, u.Path)
		if err != nil {
			return nil, err
		}
		return NewConn(nc, version, opts...), nil

	case "ws", "wss":
		d := NewWebSocketDialer(nil)
		nc, err := d.Dial(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return NewConn(nc, version, opts...), nil

	case "quic":
		d := NewQUICDialer(nil)
		nc, err := d.Dial(ctx, hostPort(u, "1883"))
		if err != nil {
			return nil, err
		}
		return NewConn(nc, version, opts...), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// hostPort returns host:port, applying the scheme's default port.
func hostPort(u *url.URL, defaultPort string) string {
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), defaultPort)
}
